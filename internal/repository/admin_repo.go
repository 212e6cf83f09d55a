package repository

import (
	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalListings     int64 `json:"total_listings"`
	PendingModeration int64 `json:"pending_moderation"`
	ActiveListings    int64 `json:"active_listings"`
	OpenReports       int64 `json:"open_reports"`
	RevenueCents      int64 `json:"revenue_cents"`
	TransactionsToday int64 `json:"transactions_today"`
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.Listing{}).Count(&s.TotalListings)
	r.db.Model(&models.Listing{}).Where("status = ?", domain.ListingPending).Count(&s.PendingModeration)
	r.db.Model(&models.Listing{}).Where("status = ?", domain.ListingActive).Count(&s.ActiveListings)
	r.db.Model(&models.Report{}).Where("status = ?", domain.ReportOpen).Count(&s.OpenReports)
	r.db.Model(&models.Transaction{}).Where("status = ?", domain.TxCompleted).
		Select("COALESCE(SUM(amount_cents),0)").Scan(&s.RevenueCents)
	r.db.Model(&models.Transaction{}).Where("DATE(created_at) = CURDATE()").Count(&s.TransactionsToday)
	return &s, nil
}

func (r *AdminRepository) ListUsers(search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *AdminRepository) UpdateUser(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AdminRepository) ListTransactions(status string, page, limit int) ([]models.Transaction, int64, error) {
	q := r.db.Model(&models.Transaction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.Transaction
	err := q.Preload("User").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&txs).Error
	return txs, total, err
}
