package models

import "time"

// Category is the authoritative category table. Subcategories are rows with a
// non-nil ParentID; top-level categories have ParentID nil.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Icon      string    `gorm:"size:64" json:"icon"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`

	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}
