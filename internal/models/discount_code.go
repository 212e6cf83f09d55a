package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountCode is read-mostly; UseCount is incremented only on redemption,
// after the paying transaction completes.
type DiscountCode struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Type            string         `gorm:"size:30;not null" json:"type"` // PERCENTAGE_DISCOUNT, FIXED_AMOUNT, EXTRA_DAYS
	Value           float64        `gorm:"not null" json:"value"`
	ExpiresAt       *time.Time     `json:"expires_at"`
	MaxUses         *int           `json:"max_uses"`
	UseCount        int            `gorm:"default:0" json:"use_count"`
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`
	CreatedByUserID *uint          `gorm:"index" json:"created_by_user_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DiscountCode) TableName() string {
	return "discount_codes"
}
