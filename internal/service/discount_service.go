package service

import (
	"errors"
	"math"
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/models"
	"sokoni/pkg/money"

	"gorm.io/gorm"
)

// Resolution errors, in validation order. The first failing check wins, so a
// code that is both inactive and expired reports inactive.
var (
	ErrCodeNotFound  = errors.New("discount code not found")
	ErrCodeInactive  = errors.New("discount code is inactive")
	ErrCodeExpired   = errors.New("discount code has expired")
	ErrCodeExhausted = errors.New("discount code has reached its usage limit")
)

type discountStore interface {
	GetByCode(code string) (*models.DiscountCode, error)
	MarkUsed(id uint) error
}

// Resolution is a validated discount, ready to apply to an amount.
type Resolution struct {
	CodeID uint
	Type   string
	Value  float64
}

type DiscountService struct {
	codes discountStore
}

func NewDiscountService(codes discountStore) *DiscountService {
	return &DiscountService{codes: codes}
}

// Resolve validates a code without consuming it. Checks run in a fixed order
// (exists, active, not expired, under max uses) so clients always see the
// same reason for the same code state.
func (s *DiscountService) Resolve(code string) (*Resolution, error) {
	dc, err := s.codes.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if !dc.IsActive {
		return nil, ErrCodeInactive
	}
	if dc.ExpiresAt != nil && dc.ExpiresAt.Before(time.Now()) {
		return nil, ErrCodeExpired
	}
	if dc.MaxUses != nil && dc.UseCount >= *dc.MaxUses {
		return nil, ErrCodeExhausted
	}
	return &Resolution{CodeID: dc.ID, Type: dc.Type, Value: dc.Value}, nil
}

// Adjust applies the resolution to an amount in minor units. EXTRA_DAYS codes
// change the listing duration, not the price, so the amount passes through.
func (r *Resolution) Adjust(amountMinor int64) int64 {
	switch r.Type {
	case domain.DiscountPercentage:
		return money.ApplyPercentage(amountMinor, r.Value)
	case domain.DiscountFixed:
		// Value is stored in minor units; round rather than truncate in case
		// a fractional value ever lands in the column.
		return money.ApplyFixed(amountMinor, int64(math.Round(r.Value)))
	default:
		return amountMinor
	}
}

// ExtraDays returns the bonus listing days this code grants, if any.
func (r *Resolution) ExtraDays() int {
	if r.Type == domain.DiscountExtraDays {
		return int(r.Value)
	}
	return 0
}

// Redeem consumes one use. Called only after the paying transaction reaches
// COMPLETED; resolution alone never increments the counter.
func (s *DiscountService) Redeem(codeID uint) error {
	return s.codes.MarkUsed(codeID)
}
