package models

import "strings"

// Well-known listing statuses. Status is free text in storage; these are
// the values the moderation flow produces.
const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
)

// Listing is a business-for-sale record moderated by administrators.
type Listing struct {
	Base
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Title       string `gorm:"not null;size:200" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null;default:0" json:"price"`
	Status      string `gorm:"not null;default:pending;size:50;index" json:"status"`
	Owner       *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// NormalizeStatus folds a status for comparison.
func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
