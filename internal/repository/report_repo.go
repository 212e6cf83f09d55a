package repository

import (
	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(rep *models.Report) error {
	return r.db.Create(rep).Error
}

func (r *ReportRepository) List(status string, page, limit int) ([]models.Report, int64, error) {
	q := r.db.Model(&models.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reports []models.Report
	err := q.Preload("Listing").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reports).Error
	return reports, total, err
}

func (r *ReportRepository) Resolve(id uint) error {
	return r.db.Model(&models.Report{}).Where("id = ?", id).
		Update("status", domain.ReportResolved).Error
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(l *models.AuditLog) error {
	return r.db.Create(l).Error
}
