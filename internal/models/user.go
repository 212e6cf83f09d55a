package models

import (
	"time"

	"sokoni/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone           string         `gorm:"size:20" json:"phone"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:20;not null;index" json:"role"` // USER | ADMIN
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	GoogleID        *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	Location        string         `gorm:"size:128" json:"location"`
	Bio             string         `gorm:"size:1024" json:"bio"`
	ListingsCount   int            `gorm:"default:0" json:"listings_count"`
	Suspended       bool           `gorm:"default:false" json:"suspended"`
	FCMToken        string         `gorm:"size:512" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Listings []Listing `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

func (User) TableName() string {
	return "users"
}
