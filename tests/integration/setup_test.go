package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace/internal/logger"
	"marketplace/internal/models"
	"marketplace/internal/server"
	"marketplace/internal/services"
	"marketplace/internal/validator"
)

const jwtSecret = "integration-secret"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Listing{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db, nil)
	listingService := services.NewListingService(db, services.NewListingStatusHook(db, auditService))

	router := server.NewRouter(server.Deps{
		UserService:    userService,
		ListingService: listingService,
		AuditService:   auditService,
		JWTSecret:      jwtSecret,
		TokenTTL:       time.Hour,
	})

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a viewer and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, username string) (token string, userID uint) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@test.com","password":"password123"}`, username, username)
	rec := app.request(http.MethodPost, "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), uint(user["id"].(float64))
}

// seedUser inserts a user with role directly and logs them in. Registration
// always yields a viewer, so moderators are seeded.
func (app *testApp) seedUser(t *testing.T, username string, role models.Role) (token string, userID uint) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Username: username, Email: username + "@test.com", Password: string(hash), Role: role, IsActive: true}
	if err := app.DB.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return app.login(t, username), user.ID
}

func (app *testApp) login(t *testing.T, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"password123"}`, username)
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// createListing creates a listing as the token's user and returns its ID.
func (app *testApp) createListing(t *testing.T, token, title string) uint {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"description":"test","price":1000}`, title)
	rec := app.request(http.MethodPost, "/api/v1/listings", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing failed: %d %s", rec.Code, rec.Body.String())
	}
	listing := parseJSON(t, rec)["listing"].(map[string]interface{})
	return uint(listing["id"].(float64))
}

func (app *testApp) auditLogs(t *testing.T) []models.AuditLog {
	t.Helper()
	var entries []models.AuditLog
	if err := app.DB.Order("id").Find(&entries).Error; err != nil {
		t.Fatalf("load audit logs: %v", err)
	}
	return entries
}
