package models

import "time"

// Plan is a listing plan (free, featured, premium). PriceCents is the listed
// price before any discount code.
type Plan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"uniqueIndex;size:20;not null" json:"code"` // FREE, FEATURED, PREMIUM
	Name         string    `gorm:"size:64;not null" json:"name"`
	PriceCents   int64     `gorm:"not null" json:"price_cents"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	Featured     bool      `gorm:"default:false" json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) Free() bool { return p.PriceCents == 0 }
