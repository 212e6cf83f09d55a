package service

import (
	"testing"
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDiscountStore struct {
	codes map[string]*models.DiscountCode
	used  []uint
}

func (f *fakeDiscountStore) GetByCode(code string) (*models.DiscountCode, error) {
	if c, ok := f.codes[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDiscountStore) MarkUsed(id uint) error {
	f.used = append(f.used, id)
	return nil
}

func TestResolvePercentageAdjustsAmount(t *testing.T) {
	store := &fakeDiscountStore{codes: map[string]*models.DiscountCode{
		"SAVE15": {ID: 7, Code: "SAVE15", Type: domain.DiscountPercentage, Value: 15, IsActive: true},
	}}
	svc := NewDiscountService(store)

	res, err := svc.Resolve("SAVE15")
	require.NoError(t, err)
	assert.Equal(t, uint(7), res.CodeID)
	// 15% off KES 200.00
	assert.Equal(t, int64(17000), res.Adjust(20000))
	assert.Equal(t, 0, res.ExtraDays())
}

func TestResolveFixedClampsAtZero(t *testing.T) {
	store := &fakeDiscountStore{codes: map[string]*models.DiscountCode{
		"OFF500": {ID: 1, Code: "OFF500", Type: domain.DiscountFixed, Value: 50000, IsActive: true},
	}}
	svc := NewDiscountService(store)

	res, err := svc.Resolve("OFF500")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Adjust(20000))
}

func TestResolveFixedRoundsFractionalValue(t *testing.T) {
	store := &fakeDiscountStore{codes: map[string]*models.DiscountCode{
		"ODD": {ID: 9, Code: "ODD", Type: domain.DiscountFixed, Value: 49.9, IsActive: true},
	}}
	svc := NewDiscountService(store)

	res, err := svc.Resolve("ODD")
	require.NoError(t, err)
	// 49.9 rounds to 50 minor units, it is not truncated to 49.
	assert.Equal(t, int64(19950), res.Adjust(20000))
}

func TestResolveExtraDaysLeavesAmount(t *testing.T) {
	store := &fakeDiscountStore{codes: map[string]*models.DiscountCode{
		"BONUS7": {ID: 2, Code: "BONUS7", Type: domain.DiscountExtraDays, Value: 7, IsActive: true},
	}}
	svc := NewDiscountService(store)

	res, err := svc.Resolve("BONUS7")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), res.Adjust(20000))
	assert.Equal(t, 7, res.ExtraDays())
}

func TestResolveFirstViolationOrdering(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	max := 5

	store := &fakeDiscountStore{codes: map[string]*models.DiscountCode{
		// Inactive AND expired AND exhausted: inactive must win.
		"DEAD": {ID: 3, Type: domain.DiscountPercentage, Value: 10, IsActive: false, ExpiresAt: &past, MaxUses: &max, UseCount: 5},
		// Active but expired AND exhausted: expired must win.
		"OLD": {ID: 4, Type: domain.DiscountPercentage, Value: 10, IsActive: true, ExpiresAt: &past, MaxUses: &max, UseCount: 5},
		// Active, unexpired, but exhausted.
		"FULL": {ID: 5, Type: domain.DiscountPercentage, Value: 10, IsActive: true, MaxUses: &max, UseCount: 5},
	}}
	svc := NewDiscountService(store)

	_, err := svc.Resolve("NOPE")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = svc.Resolve("DEAD")
	assert.ErrorIs(t, err, ErrCodeInactive)

	_, err = svc.Resolve("OLD")
	assert.ErrorIs(t, err, ErrCodeExpired)

	_, err = svc.Resolve("FULL")
	assert.ErrorIs(t, err, ErrCodeExhausted)
}

func TestResolveDoesNotConsume(t *testing.T) {
	store := &fakeDiscountStore{codes: map[string]*models.DiscountCode{
		"SAVE15": {ID: 7, Type: domain.DiscountPercentage, Value: 15, IsActive: true},
	}}
	svc := NewDiscountService(store)

	_, err := svc.Resolve("SAVE15")
	require.NoError(t, err)
	assert.Empty(t, store.used)

	require.NoError(t, svc.Redeem(7))
	assert.Equal(t, []uint{7}, store.used)
}
