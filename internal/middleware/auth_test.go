package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/actor"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
)

const testSecret = "test-secret"

// userStore serves accounts by ID.
type userStore struct {
	users map[uint]*models.User
	err   error
}

func (s *userStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func activeUser(id uint, username string, role models.Role) *models.User {
	return &models.User{Base: models.Base{ID: id}, Username: username, Role: role, IsActive: true}
}

func tokenFor(t *testing.T, id uint, username string, role models.Role, ttl time.Duration) string {
	t.Helper()
	user := &models.User{Base: models.Base{ID: id}, Username: username, Role: role}
	token, err := GenerateAccessToken(user, testSecret, ttl)
	require.NoError(t, err)
	return token
}

func authRouter(store *userStore, guards ...gin.HandlerFunc) (*gin.Engine, **actor.Actor) {
	var seen *actor.Actor
	r := gin.New()
	r.Use(Authenticate(testSecret, store))
	handlers := append(guards, func(c *gin.Context) {
		seen, _ = actor.FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/x", handlers...)
	return r, &seen
}

func serve(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	store := &userStore{users: map[uint]*models.User{
		3: activeUser(3, "alice", models.RoleAdmin),
		4: activeUser(4, "dave", models.RoleViewer),
		5: {Base: models.Base{ID: 5}, Username: "erin", Role: models.RoleAdmin, IsActive: false},
	}}

	t.Run("no header passes anonymously", func(t *testing.T) {
		r, seen := authRouter(store)
		rec := serve(r, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, *seen)
	})

	t.Run("valid token sets actor", func(t *testing.T) {
		r, seen := authRouter(store)
		rec := serve(r, "Bearer "+tokenFor(t, 3, "alice", models.RoleAdmin, time.Hour))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, *seen)
		assert.Equal(t, uint(3), (*seen).ID)
		assert.Equal(t, "alice", (*seen).Username)
		assert.Equal(t, models.RoleAdmin, (*seen).Role)
	})

	t.Run("stored role wins over claims", func(t *testing.T) {
		r, seen := authRouter(store)
		rec := serve(r, "Bearer "+tokenFor(t, 4, "dave", models.RoleAdmin, time.Hour))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, *seen)
		assert.Equal(t, models.RoleViewer, (*seen).Role)
		assert.Equal(t, "dave (viewer)", (*seen).Label())
	})

	t.Run("deactivated account", func(t *testing.T) {
		r, seen := authRouter(store)
		rec := serve(r, "Bearer "+tokenFor(t, 5, "erin", models.RoleAdmin, time.Hour))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
		assert.Nil(t, *seen)
	})

	t.Run("deleted account", func(t *testing.T) {
		r, seen := authRouter(store)
		rec := serve(r, "Bearer "+tokenFor(t, 99, "ghost", models.RoleAdmin, time.Hour))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, *seen)
	})

	t.Run("lookup failure", func(t *testing.T) {
		r, seen := authRouter(&userStore{err: apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down"))})
		rec := serve(r, "Bearer "+tokenFor(t, 3, "alice", models.RoleAdmin, time.Hour))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Nil(t, *seen)
	})

	t.Run("bad format", func(t *testing.T) {
		r, _ := authRouter(store)
		rec := serve(r, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})

	t.Run("expired token", func(t *testing.T) {
		r, _ := authRouter(store)
		rec := serve(r, "Bearer "+tokenFor(t, 3, "alice", models.RoleAdmin, -time.Minute))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		user := &models.User{Base: models.Base{ID: 1}, Username: "mallory", Role: models.RoleAdmin}
		token, err := GenerateAccessToken(user, "other-secret", time.Hour)
		require.NoError(t, err)

		r, _ := authRouter(store)
		rec := serve(r, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	store := &userStore{users: map[uint]*models.User{1: activeUser(1, "v", models.RoleViewer)}}
	r, _ := authRouter(store, RequireAuth())
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "Bearer "+tokenFor(t, 1, "v", models.RoleViewer, time.Hour)).Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"admin", models.RoleAdmin, http.StatusOK},
		{"editor", models.RoleEditor, http.StatusOK},
		{"viewer", models.RoleViewer, http.StatusForbidden},
		{"unknown", models.Role("auditor"), http.StatusForbidden},
	}

	store := &userStore{users: map[uint]*models.User{}}
	for i, tt := range tests {
		store.users[uint(i+1)] = activeUser(uint(i+1), "u", tt.role)
	}
	r, _ := authRouter(store, RequireRole(models.RoleAdmin, models.RoleEditor))

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, "Bearer "+tokenFor(t, uint(i+1), "u", tt.role, time.Hour))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	})
}
