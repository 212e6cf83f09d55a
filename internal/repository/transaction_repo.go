package repository

import (
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create writes the single PENDING ledger row for a payment attempt. The
// unique index on reference guarantees no second row for the same gateway
// initialization.
func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByReference(ref string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.Where("reference = ?", ref).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkTerminal moves a PENDING row to a terminal status. The conditional
// update makes duplicate webhook deliveries and the poll/push race harmless:
// only the first transition changes anything.
func (r *TransactionRepository) MarkTerminal(id uint, status, pspTransactionID string) (bool, error) {
	updates := map[string]interface{}{"status": status}
	if status == domain.TxCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	}
	if pspTransactionID != "" {
		updates["psp_transaction_id"] = pspTransactionID
	}
	res := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxPending).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// MarkRefunded flips a COMPLETED row to REFUNDED. Same conditional shape as
// MarkTerminal so a double refund loses the race instead of running twice.
func (r *TransactionRepository) MarkRefunded(id uint) (bool, error) {
	res := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxCompleted).
		Update("status", domain.TxRefunded)
	return res.RowsAffected > 0, res.Error
}

// RestoreCompleted rolls a REFUNDED row back to COMPLETED after a failed
// gateway refund.
func (r *TransactionRepository) RestoreCompleted(id uint) error {
	return r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxRefunded).
		Update("status", domain.TxCompleted).Error
}

// CancelStale moves PENDING rows older than the cutoff to CANCELLED. A late
// webhook for a cancelled row loses the conditional update and is ignored.
func (r *TransactionRepository) CancelStale(olderThan time.Duration) (int64, error) {
	res := r.db.Model(&models.Transaction{}).
		Where("status = ? AND created_at < ?", domain.TxPending, time.Now().Add(-olderThan)).
		Update("status", domain.TxCancelled)
	return res.RowsAffected, res.Error
}

func (r *TransactionRepository) ListByUser(userID uint, page, limit int) ([]models.Transaction, int64, error) {
	q := r.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.Transaction
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&txs).Error
	return txs, total, err
}
