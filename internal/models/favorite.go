package models

import (
	"time"

	"gorm.io/gorm"
)

// Favorite is a saved listing.
type Favorite struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_fav_pair,unique" json:"user_id"`
	ListingID uint           `gorm:"not null;index:idx_fav_pair,unique" json:"listing_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Listing Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
