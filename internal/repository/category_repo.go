package repository

import (
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetByID(id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListTree returns top-level categories with their subcategories preloaded.
func (r *CategoryRepository) ListTree() ([]models.Category, error) {
	var cats []models.Category
	err := r.db.Where("parent_id IS NULL").
		Preload("Children", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order") }).
		Order("sort_order").
		Find(&cats).Error
	return cats, err
}
