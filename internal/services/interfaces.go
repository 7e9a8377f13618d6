package services

import (
	"context"
	"strings"

	"marketplace/internal/models"
	"marketplace/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUserRole(ctx context.Context, id uint, role models.Role) (*models.User, error)
}

// ListingUpdate carries the fields of a listing update. Nil fields are left
// untouched.
type ListingUpdate struct {
	Title       *string
	Description *string
	Price       *int64
	Status      *string
}

// HasStatus reports whether the update carries a status field.
func (u ListingUpdate) HasStatus() bool {
	return u.Status != nil
}

// columns returns the gorm column map for the update.
func (u ListingUpdate) columns() map[string]any {
	cols := make(map[string]any, 4)
	if u.Title != nil {
		cols["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Status != nil {
		cols["status"] = models.NormalizeStatus(*u.Status)
	}
	return cols
}

// ListingFilter holds optional filter parameters for listing queries.
type ListingFilter struct {
	Status  string
	OwnerID *uint
}

// ListingServicer defines the contract for listing-related business logic.
type ListingServicer interface {
	CreateListing(ctx context.Context, ownerID uint, title, description string, price int64) (*models.Listing, error)
	GetListings(ctx context.Context, page pagination.PageRequest, filter ListingFilter) (*pagination.PageResponse[models.Listing], error)
	GetListingByID(ctx context.Context, id uint) (*models.Listing, error)
	// UpdateListing is the moderation path; status changes run the status hook.
	UpdateListing(ctx context.Context, id uint, update ListingUpdate) (*models.Listing, error)
	// UpdateOwnListing lets an owner edit content. Status is not owner-editable.
	UpdateOwnListing(ctx context.Context, ownerID, id uint, update ListingUpdate) (*models.Listing, error)
	DeleteListing(ctx context.Context, ownerID, id uint) error
}

// AuditFilter holds optional filter parameters for the audit trail.
type AuditFilter struct {
	Action  string
	ActorID *uint
}

// AuditServicer defines the contract for admin audit logging.
type AuditServicer interface {
	// LogAdminAction records action/target for the actor on ctx when that
	// actor is an administrator. Missing or unprivileged actors are a silent
	// no-op (nil). A non-nil error means the write failed; callers log it and
	// carry on.
	LogAdminAction(ctx context.Context, action, target string) error
	ListAuditLogs(ctx context.Context, page pagination.PageRequest, filter AuditFilter) (*pagination.PageResponse[models.AuditLog], error)
}
