package repository

import (
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByID(id uint) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) GetByCode(code string) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) List() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("price_cents").Find(&plans).Error
	return plans, err
}
