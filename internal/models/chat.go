package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is one buyer/seller thread about a listing.
type Conversation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ListingID     uint           `gorm:"not null;index:idx_conv,unique" json:"listing_id"`
	BuyerID       uint           `gorm:"not null;index:idx_conv,unique" json:"buyer_id"`
	SellerID      uint           `gorm:"not null;index" json:"seller_id"`
	LastMessageAt *time.Time     `json:"last_message_at"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Buyer   User    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller  User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`
	Body           string         `gorm:"type:text" json:"body"`
	MediaURL       string         `gorm:"size:512" json:"media_url"`
	ReadAt         *time.Time     `json:"read_at"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
