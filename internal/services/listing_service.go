package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
	"marketplace/internal/pagination"
)

// listingService handles listing-related business logic.
type listingService struct {
	db         *gorm.DB
	statusHook *ListingStatusHook
}

// NewListingService creates a new ListingServicer. Moderation updates report
// status transitions through statusHook; a nil hook disables auditing.
func NewListingService(db *gorm.DB, statusHook *ListingStatusHook) ListingServicer {
	return &listingService{db: db, statusHook: statusHook}
}

// CreateListing creates a pending listing owned by ownerID.
func (s *listingService) CreateListing(ctx context.Context, ownerID uint, title, description string, price int64) (*models.Listing, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "listing title is required")
	}
	if price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}

	listing := &models.Listing{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Price:       price,
		Status:      models.ListingStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return listing, nil
}

// GetListings retrieves a paginated list of listings.
func (s *listingService) GetListings(ctx context.Context, page pagination.PageRequest, filter ListingFilter) (*pagination.PageResponse[models.Listing], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Listing{})
	if filter.Status != "" {
		base = base.Where("status = ?", models.NormalizeStatus(filter.Status))
	}
	if filter.OwnerID != nil {
		base = base.Where("owner_id = ?", *filter.OwnerID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var listings []models.Listing
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&listings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(listings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetListingByID retrieves a listing by ID
func (s *listingService) GetListingByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &listing, nil
}

// UpdateListing applies a moderation update. A status transition is diffed
// before the write and audited only after the write succeeds.
func (s *listingService) UpdateListing(ctx context.Context, id uint, update ListingUpdate) (*models.Listing, error) {
	if err := validateListingUpdate(update); err != nil {
		return nil, err
	}

	listing, err := s.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := update.columns()
	if len(cols) == 0 {
		return listing, nil
	}

	var change *ListingStatusChange
	if s.statusHook != nil {
		change = s.statusHook.BeforeUpdate(ctx, id, update)
	}

	if err := s.db.WithContext(ctx).Model(listing).Updates(cols).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.statusHook != nil {
		s.statusHook.AfterUpdate(ctx, change)
	}

	return s.GetListingByID(ctx, id)
}

// UpdateOwnListing lets the owner edit title, description and price.
func (s *listingService) UpdateOwnListing(ctx context.Context, ownerID, id uint, update ListingUpdate) (*models.Listing, error) {
	if update.HasStatus() {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "listing status can only be changed by moderators")
	}
	if err := validateListingUpdate(update); err != nil {
		return nil, err
	}

	listing, err := s.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID {
		return nil, apperrors.ErrNotListingOwner
	}

	cols := update.columns()
	if len(cols) == 0 {
		return listing, nil
	}
	if err := s.db.WithContext(ctx).Model(listing).Updates(cols).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetListingByID(ctx, id)
}

// DeleteListing soft-deletes a listing owned by ownerID.
func (s *listingService) DeleteListing(ctx context.Context, ownerID, id uint) error {
	listing, err := s.GetListingByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != ownerID {
		return apperrors.ErrNotListingOwner
	}
	if err := s.db.WithContext(ctx).Delete(listing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func validateListingUpdate(update ListingUpdate) error {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "listing title cannot be empty")
	}
	if update.Price != nil && *update.Price < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}
	if update.Status != nil && models.NormalizeStatus(*update.Status) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "listing status cannot be empty")
	}
	return nil
}

// containsPattern builds a case-insensitive LIKE pattern.
func containsPattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
