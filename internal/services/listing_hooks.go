package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketplace/internal/logger"
	"marketplace/internal/models"
	"marketplace/internal/telemetry"
)

// statusActions maps well-known statuses to their audit phrase.
var statusActions = map[string]string{
	models.ListingStatusApproved: "Listing Approved",
	models.ListingStatusRejected: "Listing Rejected",
}

// ListingStatusChange describes a detected status transition.
type ListingStatusChange struct {
	ListingID uint
	Title     string
	From      string
	To        string
}

// Action returns the audit action phrase for the transition.
func (c *ListingStatusChange) Action() string {
	status := models.NormalizeStatus(c.To)
	if action, ok := statusActions[status]; ok {
		return action
	}
	return "Listing Status Changed to " + status
}

// Target identifies the listing: "Acme Co (listing42)".
func (c *ListingStatusChange) Target() string {
	return fmt.Sprintf("%s (listing%d)", c.Title, c.ListingID)
}

// ListingStatusHook watches listing updates for status transitions and
// reports them to the audit service. Nothing it does can fail the update.
type ListingStatusHook struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewListingStatusHook creates a hook bound to the listing table.
func NewListingStatusHook(db *gorm.DB, audit AuditServicer) *ListingStatusHook {
	return &ListingStatusHook{db: db, audit: audit}
}

// BeforeUpdate diffs the incoming status against the stored one. It returns
// nil when there is nothing to record.
func (h *ListingStatusHook) BeforeUpdate(ctx context.Context, listingID uint, update ListingUpdate) (change *ListingStatusChange) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorw("recovered panic in listing status hook", "panic", r, "listing_id", listingID)
			change = nil
		}
	}()

	if !update.HasStatus() {
		return nil
	}

	var existing models.Listing
	err := h.db.WithContext(ctx).
		Select("id", "title", "status").
		First(&existing, listingID).Error
	if err != nil {
		logger.Get().Errorw("listing status hook: failed to load listing",
			"error", err,
			"listing_id", listingID,
		)
		return nil
	}

	newStatus := *update.Status
	if models.NormalizeStatus(existing.Status) == models.NormalizeStatus(newStatus) {
		return nil
	}

	return &ListingStatusChange{
		ListingID: existing.ID,
		Title:     existing.Title,
		From:      existing.Status,
		To:        newStatus,
	}
}

// AfterUpdate records a change once the update has been persisted.
func (h *ListingStatusHook) AfterUpdate(ctx context.Context, change *ListingStatusChange) {
	if change == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorw("recovered panic in listing status hook", "panic", r, "listing_id", change.ListingID)
		}
	}()

	telemetry.ListingStatusTransitionsTotal.WithLabelValues(telemetry.StatusLabel(models.NormalizeStatus(change.To))).Inc()

	if err := h.audit.LogAdminAction(ctx, change.Action(), change.Target()); err != nil {
		logger.Get().Warnw("listing status change not audited",
			"error", err,
			"listing_id", change.ListingID,
			"from", change.From,
			"to", change.To,
		)
	}
}
