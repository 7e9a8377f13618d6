package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/audit"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/logger"
	"marketplace/internal/server"
	"marketplace/internal/services"
	"marketplace/internal/validator"
)

// @title           Marketplace API
// @version         1.0
// @description     Business marketplace backend: listings, moderation and the admin audit trail.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	os.Exit(exitCode(run()))
}

// exitCode logs a fatal run error and flushes the logger before the process
// exits.
func exitCode(err error) int {
	defer logger.Sync()

	if err != nil {
		logger.Get().Errorw("fatal error", "error", err)
		return 1
	}
	return 0
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations("migrations"); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var shipper audit.Shipper = audit.NopShipper{}
	if len(appConfig.AuditKafkaBrokers) > 0 {
		kafkaShipper, err := audit.NewKafkaShipper(appConfig.AuditKafkaBrokers, appConfig.AuditKafkaTopic)
		if err != nil {
			return fmt.Errorf("failed to create audit shipper: %w", err)
		}
		shipper = kafkaShipper
		log.Infow("audit shipping enabled", "brokers", appConfig.AuditKafkaBrokers, "topic", appConfig.AuditKafkaTopic)
	}
	defer func() {
		if err := shipper.Close(); err != nil {
			log.Warnf("audit shipper close error: %v", err)
		}
	}()

	validator.Register()

	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db, shipper)
	listingService := services.NewListingService(db, services.NewListingStatusHook(db, auditService))

	router := server.NewRouter(server.Deps{
		UserService:    userService,
		ListingService: listingService,
		AuditService:   auditService,
		JWTSecret:      appConfig.JWTSecret,
		TokenTTL:       appConfig.JWTExpirationDur,
	})

	log.Infof("Starting marketplace server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
