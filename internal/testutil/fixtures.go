package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"marketplace/internal/actor"
	"marketplace/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateTestUser creates an active user with the given role and a unique username.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithName(t, db, fmt.Sprintf("user%d", n), role)
}

// CreateTestUserWithName creates an active user with the given username and role.
func CreateTestUserWithName(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    username + "@test.com",
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestListing creates a listing with the given title and status.
func CreateTestListing(t *testing.T, db *gorm.DB, ownerID uint, title, status string) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		OwnerID: ownerID,
		Title:   title,
		Price:   1_000_000,
		Status:  status,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

// CreateTestListingWithID creates a listing with a fixed primary key.
func CreateTestListingWithID(t *testing.T, db *gorm.DB, id, ownerID uint, title, status string) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		Base:    models.Base{ID: id},
		OwnerID: ownerID,
		Title:   title,
		Status:  status,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

// ActorContext returns a context carrying an actor built from user.
func ActorContext(user *models.User) context.Context {
	return actor.NewContext(context.Background(), &actor.Actor{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}
