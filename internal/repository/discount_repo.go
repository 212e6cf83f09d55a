package repository

import (
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(c *models.DiscountCode) error {
	return r.db.Create(c).Error
}

func (r *DiscountRepository) GetByCode(code string) (*models.DiscountCode, error) {
	var c models.DiscountCode
	if err := r.db.Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *DiscountRepository) GetByID(id uint) (*models.DiscountCode, error) {
	var c models.DiscountCode
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *DiscountRepository) Update(c *models.DiscountCode) error {
	return r.db.Save(c).Error
}

// MarkUsed increments use_count. Called only after the paying transaction
// completes, never at resolution time.
func (r *DiscountRepository) MarkUsed(id uint) error {
	return r.db.Model(&models.DiscountCode{}).Where("id = ?", id).
		UpdateColumn("use_count", gorm.Expr("use_count + 1")).Error
}

func (r *DiscountRepository) List(page, limit int) ([]models.DiscountCode, int64, error) {
	var total int64
	if err := r.db.Model(&models.DiscountCode{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var codes []models.DiscountCode
	err := r.db.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&codes).Error
	return codes, total, err
}
