package models

// User represents a marketplace account
type User struct {
	Base
	Username string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     Role      `gorm:"not null;default:viewer;size:20" json:"role"`
	IsActive bool      `gorm:"default:true" json:"is_active"`
	Listings []Listing `gorm:"foreignKey:OwnerID" json:"listings,omitempty"`
}
