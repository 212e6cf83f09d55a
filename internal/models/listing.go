package models

import (
	"time"

	"gorm.io/gorm"
)

type Listing struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	PriceCents    int64          `gorm:"not null" json:"price_cents"`
	Currency      string         `gorm:"size:3;default:'KES'" json:"currency"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	SubcategoryID *uint          `gorm:"index" json:"subcategory_id"`
	Condition     string         `gorm:"size:20;default:'USED'" json:"condition"`
	Location      string         `gorm:"size:128" json:"location"`
	Tags          string         `gorm:"size:512" json:"tags"` // comma separated
	Plan          string         `gorm:"size:20;not null;default:'FREE'" json:"plan"`
	Status        string         `gorm:"size:20;not null;index" json:"status"` // PAYMENT_PENDING, PENDING, ACTIVE, REJECTED, EXPIRED
	Featured      bool           `gorm:"default:false;index" json:"featured"`
	Views         int64          `gorm:"default:0" json:"views"`
	ExpiresAt     *time.Time     `json:"expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User        User           `gorm:"foreignKey:UserID" json:"-"`
	Category    Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subcategory *Category      `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	Images      []ListingImage `gorm:"foreignKey:ListingID" json:"images"`
}

func (Listing) TableName() string {
	return "listings"
}

// ListingImage holds one resolved media URL. Only durable storage URLs are
// persisted here; data:/blob: references must go through ingestion first.
type ListingImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MediaType string    `gorm:"size:10;default:'IMAGE'" json:"media_type"` // IMAGE | VIDEO
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}
