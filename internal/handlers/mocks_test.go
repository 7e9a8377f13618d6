package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"marketplace/internal/actor"
	"marketplace/internal/models"
	"marketplace/internal/pagination"
	"marketplace/internal/services"
	"marketplace/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn     func(username, email, password string) (*models.User, error)
	authenticateFn   func(username, password string) (*models.User, error)
	getUserByIDFn    func(id uint) (*models.User, error)
	updateUserRoleFn func(id uint, role models.Role) (*models.User, error)
}

func (m *mockUserService) CreateUser(_ context.Context, username, email, password string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(username, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(username, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdateUserRole(_ context.Context, id uint, role models.Role) (*models.User, error) {
	if m.updateUserRoleFn != nil {
		return m.updateUserRoleFn(id, role)
	}
	return &models.User{Base: models.Base{ID: id}, Role: role}, nil
}

type mockListingService struct {
	createListingFn    func(ownerID uint, title, description string, price int64) (*models.Listing, error)
	getListingsFn      func(page pagination.PageRequest, filter services.ListingFilter) (*pagination.PageResponse[models.Listing], error)
	getListingByIDFn   func(id uint) (*models.Listing, error)
	updateListingFn    func(ctx context.Context, id uint, update services.ListingUpdate) (*models.Listing, error)
	updateOwnListingFn func(ownerID, id uint, update services.ListingUpdate) (*models.Listing, error)
	deleteListingFn    func(ownerID, id uint) error
}

func (m *mockListingService) CreateListing(_ context.Context, ownerID uint, title, description string, price int64) (*models.Listing, error) {
	if m.createListingFn != nil {
		return m.createListingFn(ownerID, title, description, price)
	}
	return &models.Listing{}, nil
}

func (m *mockListingService) GetListings(_ context.Context, page pagination.PageRequest, filter services.ListingFilter) (*pagination.PageResponse[models.Listing], error) {
	if m.getListingsFn != nil {
		return m.getListingsFn(page, filter)
	}
	resp := pagination.NewPageResponse[models.Listing](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

func (m *mockListingService) GetListingByID(_ context.Context, id uint) (*models.Listing, error) {
	if m.getListingByIDFn != nil {
		return m.getListingByIDFn(id)
	}
	return &models.Listing{}, nil
}

func (m *mockListingService) UpdateListing(ctx context.Context, id uint, update services.ListingUpdate) (*models.Listing, error) {
	if m.updateListingFn != nil {
		return m.updateListingFn(ctx, id, update)
	}
	return &models.Listing{}, nil
}

func (m *mockListingService) UpdateOwnListing(_ context.Context, ownerID, id uint, update services.ListingUpdate) (*models.Listing, error) {
	if m.updateOwnListingFn != nil {
		return m.updateOwnListingFn(ownerID, id, update)
	}
	return &models.Listing{}, nil
}

func (m *mockListingService) DeleteListing(_ context.Context, ownerID, id uint) error {
	if m.deleteListingFn != nil {
		return m.deleteListingFn(ownerID, id)
	}
	return nil
}

type auditCall struct {
	action string
	target string
}

type mockAuditService struct {
	calls         []auditCall
	err           error
	listAuditLogs func(page pagination.PageRequest, filter services.AuditFilter) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) LogAdminAction(_ context.Context, action, target string) error {
	m.calls = append(m.calls, auditCall{action: action, target: target})
	return m.err
}

func (m *mockAuditService) ListAuditLogs(_ context.Context, page pagination.PageRequest, filter services.AuditFilter) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listAuditLogs != nil {
		return m.listAuditLogs(page, filter)
	}
	resp := pagination.NewPageResponse[models.AuditLog](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

// injectActor stands in for middleware.Authenticate.
func injectActor(a *actor.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(actor.NewContext(c.Request.Context(), a))
		c.Set("userID", a.ID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
