package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the ledger row for one payment attempt. Created PENDING with a
// unique reference generated before the insert; moved exactly once to a
// terminal status by the gateway webhook (or cancelled on timeout). Never
// deleted by the payment flow.
type Transaction struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	AmountCents      int64          `gorm:"not null" json:"amount_cents"`
	Currency         string         `gorm:"size:3;default:'KES'" json:"currency"`
	Provider         string         `gorm:"size:50;not null" json:"provider"`
	PaymentMethod    string         `gorm:"size:20;not null" json:"payment_method"` // CARD | MPESA
	Reference        string         `gorm:"size:255;uniqueIndex;not null" json:"reference"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED, CANCELLED
	ListingID        *uint          `gorm:"index" json:"listing_id"`
	PlanID           *uint          `gorm:"index" json:"plan_id"`
	DiscountCodeID   *uint          `gorm:"index" json:"discount_code_id"`
	PSPTransactionID string         `gorm:"size:255" json:"psp_transaction_id"`
	CompletedAt      *time.Time     `json:"completed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Listing *Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Terminal reports whether the row has reached a final status.
func (t *Transaction) Terminal() bool {
	return t.Status != "PENDING"
}
