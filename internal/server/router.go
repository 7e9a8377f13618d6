// Package server assembles the gin engine: middleware pipeline and routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "marketplace/internal/docs" // swagger spec
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"
)

// Deps are the services and settings the router is built from.
type Deps struct {
	UserService    services.UserServicer
	ListingService services.ListingServicer
	AuditService   services.AuditServicer
	JWTSecret      string
	TokenTTL       time.Duration
}

// NewRouter returns the API engine. Authenticate runs before RequestLogging
// so the entry log line carries the resolved actor.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.UserService, d.JWTSecret, d.TokenTTL)
	listingHandler := handlers.NewListingHandler(d.ListingService)
	adminHandler := handlers.NewAdminHandler(d.ListingService, d.UserService, d.AuditService)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Authenticate(d.JWTSecret, d.UserService))
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	v1.GET("/listings", listingHandler.GetListings)
	v1.GET("/listings/:id", listingHandler.GetListing)

	protected := v1.Group("/")
	protected.Use(middleware.RequireAuth())
	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/listings", listingHandler.CreateListing)
	protected.PUT("/listings/:id", listingHandler.UpdateListing)
	protected.DELETE("/listings/:id", listingHandler.DeleteListing)

	moderation := v1.Group("/admin")
	moderation.PUT("/listings/:id", middleware.RequireRole(models.RoleAdmin, models.RoleEditor), adminHandler.ModerateListing)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.GET("/listings", adminHandler.ListListings)
	admin.GET("/audit-logs", adminHandler.ListAuditLogs)
	admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)

	return router
}
