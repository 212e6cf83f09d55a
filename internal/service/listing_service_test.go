package service

import (
	"context"
	"testing"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeListingStore struct {
	nextID   uint
	rows     map[uint]*models.Listing
	statuses []string // recorded from->to transitions
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{nextID: 1, rows: map[uint]*models.Listing{}}
}

func (f *fakeListingStore) Create(l *models.Listing) error {
	l.ID = f.nextID
	f.nextID++
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeListingStore) GetByID(id uint) (*models.Listing, error) {
	l, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingStore) Update(l *models.Listing) error {
	if _, ok := f.rows[l.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeListingStore) Delete(id uint) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeListingStore) UpdateStatus(id uint, from, to string) (int64, error) {
	l, ok := f.rows[id]
	if !ok || l.Status != from {
		return 0, nil
	}
	l.Status = to
	f.statuses = append(f.statuses, from+"->"+to)
	return 1, nil
}

func (f *fakeListingStore) ReplaceImages(listingID uint, images []models.ListingImage) error {
	l, ok := f.rows[listingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Images = images
	return nil
}

type fakeCategoryStore struct {
	cats map[uint]*models.Category
}

func (f *fakeCategoryStore) GetByID(id uint) (*models.Category, error) {
	if c, ok := f.cats[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePlanStore struct{ plans map[string]*models.Plan }

func (f *fakePlanStore) GetByCode(code string) (*models.Plan, error) {
	if p, ok := f.plans[code]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCounter struct{ deltas []int }

func (f *fakeCounter) IncrementListings(_ uint, delta int) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

func newListingFixture() (*ListingService, *fakeListingStore, *fakeCounter) {
	parent := uint(1)
	store := newFakeListingStore()
	counter := &fakeCounter{}
	svc := NewListingService(
		store,
		&fakeCategoryStore{cats: map[uint]*models.Category{
			1: {ID: 1, Name: "Electronics"},
			2: {ID: 2, Name: "Phones", ParentID: &parent},
		}},
		&fakePlanStore{plans: map[string]*models.Plan{
			domain.PlanFree:     {ID: 1, Code: domain.PlanFree, PriceCents: 0, DurationDays: 30},
			domain.PlanFeatured: {ID: 2, Code: domain.PlanFeatured, PriceCents: 15000, DurationDays: 30, Featured: true},
		}},
		counter,
		nil, nil, nil,
	)
	return svc, store, counter
}

func TestPublishFreePlanEntersModerationQueue(t *testing.T) {
	svc, _, counter := newListingFixture()

	l, err := svc.Publish(context.Background(), 9, PublishInput{
		Title:      "iPhone 12",
		PriceCents: 4500000,
		CategoryID: 1,
		MediaURLs:  []string{"https://res.cloudinary.com/demo/a.webp"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingPending, l.Status)
	assert.Equal(t, domain.PlanFree, l.Plan)
	assert.Equal(t, domain.ConditionUsed, l.Condition, "condition defaults, never empty")
	assert.Equal(t, []int{1}, counter.deltas)
}

func TestPublishPaidPlanHeldUntilPayment(t *testing.T) {
	svc, store, _ := newListingFixture()

	l, err := svc.Publish(context.Background(), 9, PublishInput{
		Title:      "MacBook",
		PriceCents: 8000000,
		CategoryID: 1,
		Plan:       "featured",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingPaymentPending, l.Status)
	assert.True(t, l.Featured)

	// Payment completes: exactly one transition into the moderation queue.
	require.NoError(t, svc.OnPaymentCompleted(context.Background(), l.ID, 0))
	got, _ := store.GetByID(l.ID)
	assert.Equal(t, domain.ListingPending, got.Status)

	// Replayed webhook is a no-op.
	require.NoError(t, svc.OnPaymentCompleted(context.Background(), l.ID, 0))
	assert.Len(t, store.statuses, 1)
}

func TestPublishRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newListingFixture()
	_, err := svc.Publish(context.Background(), 9, PublishInput{Title: "x", CategoryID: 404})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestPublishRejectsMismatchedSubcategory(t *testing.T) {
	svc, _, _ := newListingFixture()
	sub := uint(1) // top-level, not a child of 2
	_, err := svc.Publish(context.Background(), 9, PublishInput{Title: "x", CategoryID: 2, SubcategoryID: &sub})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestPublishRejectsEphemeralMedia(t *testing.T) {
	svc, _, _ := newListingFixture()
	_, err := svc.Publish(context.Background(), 9, PublishInput{
		Title:      "x",
		CategoryID: 1,
		MediaURLs:  []string{"blob:https://sokoni.co.ke/51bb7e33"},
	})
	assert.ErrorIs(t, err, ErrEphemeralMedia)
}

func TestModerateApproveSetsExpiry(t *testing.T) {
	svc, store, _ := newListingFixture()
	l, err := svc.Publish(context.Background(), 9, PublishInput{Title: "x", CategoryID: 1})
	require.NoError(t, err)

	got, err := svc.Moderate(context.Background(), 1, l.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ListingActive, got.Status)

	stored, _ := store.GetByID(l.ID)
	require.NotNil(t, stored.ExpiresAt)

	// A second decision on the same listing fails the conditional update.
	_, err = svc.Moderate(context.Background(), 1, l.ID, false, "spam")
	assert.ErrorIs(t, err, ErrNotAwaitingReview)
}

func TestModerateRejectKeepsListingHidden(t *testing.T) {
	svc, store, _ := newListingFixture()
	l, err := svc.Publish(context.Background(), 9, PublishInput{Title: "x", CategoryID: 1})
	require.NoError(t, err)

	got, err := svc.Moderate(context.Background(), 1, l.ID, false, "counterfeit")
	require.NoError(t, err)
	assert.Equal(t, domain.ListingRejected, got.Status)

	stored, _ := store.GetByID(l.ID)
	assert.Nil(t, stored.ExpiresAt)
}

func TestDeleteOwnershipAndCounter(t *testing.T) {
	svc, _, counter := newListingFixture()
	l, err := svc.Publish(context.Background(), 9, PublishInput{Title: "x", CategoryID: 1})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 10, false, l.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.Delete(context.Background(), 9, false, l.ID))
	assert.Equal(t, []int{1, -1}, counter.deltas)

	err = svc.Delete(context.Background(), 9, false, l.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestUpdateActiveListingReturnsToQueue(t *testing.T) {
	svc, store, _ := newListingFixture()
	l, err := svc.Publish(context.Background(), 9, PublishInput{Title: "x", CategoryID: 1})
	require.NoError(t, err)
	_, err = svc.Moderate(context.Background(), 1, l.ID, true, "")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 9, l.ID, PublishInput{Title: "better title"})
	require.NoError(t, err)
	stored, _ := store.GetByID(l.ID)
	assert.Equal(t, domain.ListingPending, stored.Status)
	assert.Equal(t, "better title", stored.Title)
}
