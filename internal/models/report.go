package models

import (
	"time"

	"gorm.io/gorm"
)

// Report is a user flag on a listing; admins review them alongside the
// moderation queue.
type Report struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ReporterID uint           `gorm:"not null;index" json:"reporter_id"`
	ListingID  uint           `gorm:"not null;index" json:"listing_id"`
	Reason     string         `gorm:"size:50" json:"reason"`
	Details    string         `gorm:"type:text" json:"details"`
	Status     string         `gorm:"size:20;default:'OPEN';index" json:"status"` // OPEN, RESOLVED
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Reporter User    `gorm:"foreignKey:ReporterID" json:"-"`
	Listing  Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (Report) TableName() string {
	return "reports"
}

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Action     string    `gorm:"size:100;not null;index" json:"action"`
	Resource   string    `gorm:"size:100;index" json:"resource"`
	ResourceID string    `gorm:"size:100;index" json:"resource_id"`
	IP         string    `gorm:"size:45" json:"ip"`
	UserAgent  string    `gorm:"size:512" json:"user_agent"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
