package repository

import (
	"strings"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(l *models.Listing) error {
	return r.db.Create(l).Error
}

func (r *ListingRepository) GetByID(id uint) (*models.Listing, error) {
	var l models.Listing
	err := r.db.Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Preload("Category").
		First(&l, id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Update(l *models.Listing) error {
	return r.db.Save(l).Error
}

func (r *ListingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Listing{}, id).Error
}

// UpdateStatus performs the single conditional moderation/publication update:
// rows are only touched when they are currently in fromStatus. Returns the
// number of rows changed so callers can detect a lost race.
func (r *ListingRepository) UpdateStatus(id uint, fromStatus, toStatus string) (int64, error) {
	res := r.db.Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	return res.RowsAffected, res.Error
}

func (r *ListingRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *ListingRepository) ReplaceImages(listingID uint, images []models.ListingImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listingID).Delete(&models.ListingImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ListingID = listingID
			images[i].Position = i
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
}

// FeedFilter narrows the public feed. Zero values are ignored.
type FeedFilter struct {
	CategoryID    uint
	SubcategoryID uint
	Query         string
	MinPriceCents int64
	MaxPriceCents int64
	Sort          string // newest | price_asc | price_desc
}

// Feed lists ACTIVE listings, featured first.
func (r *ListingRepository) Feed(f FeedFilter, page, limit int) ([]models.Listing, int64, error) {
	q := r.db.Model(&models.Listing{}).Where("status = ?", domain.ListingActive)
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.SubcategoryID != 0 {
		q = q.Where("subcategory_id = ?", f.SubcategoryID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + s + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if f.MinPriceCents > 0 {
		q = q.Where("price_cents >= ?", f.MinPriceCents)
	}
	if f.MaxPriceCents > 0 {
		q = q.Where("price_cents <= ?", f.MaxPriceCents)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := "featured DESC, created_at DESC"
	switch f.Sort {
	case "price_asc":
		order = "featured DESC, price_cents ASC"
	case "price_desc":
		order = "featured DESC, price_cents DESC"
	}
	var listings []models.Listing
	err := q.Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Order(order).
		Offset((page - 1) * limit).Limit(limit).
		Find(&listings).Error
	return listings, total, err
}

func (r *ListingRepository) ListByUser(userID uint, page, limit int) ([]models.Listing, int64, error) {
	q := r.db.Model(&models.Listing{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var listings []models.Listing
	err := q.Preload("Images").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&listings).Error
	return listings, total, err
}

// ListByStatus feeds the admin moderation queue.
func (r *ListingRepository) ListByStatus(status string, page, limit int) ([]models.Listing, int64, error) {
	q := r.db.Model(&models.Listing{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var listings []models.Listing
	err := q.Preload("Images").Preload("User").Order("created_at ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&listings).Error
	return listings, total, err
}

// ExpireOverdue flips ACTIVE listings past their expiry to EXPIRED.
func (r *ListingRepository) ExpireOverdue() (int64, error) {
	res := r.db.Model(&models.Listing{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < NOW()", domain.ListingActive).
		Update("status", domain.ListingExpired)
	return res.RowsAffected, res.Error
}
