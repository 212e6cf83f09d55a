package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"sokoni/internal/cache"
	"sokoni/internal/domain"
	"sokoni/internal/events"
	"sokoni/internal/models"
	"sokoni/pkg/mediabuf"

	"gorm.io/gorm"
)

var (
	ErrInvalidCategory   = errors.New("category does not exist")
	ErrInvalidPlan       = errors.New("unknown listing plan")
	ErrNotOwner          = errors.New("listing belongs to another user")
	ErrListingNotFound   = errors.New("listing not found")
	ErrEphemeralMedia    = errors.New("listing media must be ingested before publishing")
	ErrNotAwaitingReview = errors.New("listing is not awaiting moderation")
)

type listingStore interface {
	Create(l *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	Update(l *models.Listing) error
	Delete(id uint) error
	UpdateStatus(id uint, fromStatus, toStatus string) (int64, error)
	ReplaceImages(listingID uint, images []models.ListingImage) error
}

type categoryStore interface {
	GetByID(id uint) (*models.Category, error)
}

type planStore interface {
	GetByCode(code string) (*models.Plan, error)
}

type listingCounter interface {
	IncrementListings(id uint, delta int) error
}

// PublishInput is a listing draft as submitted by the owner.
type PublishInput struct {
	Title         string
	Description   string
	PriceCents    int64
	CategoryID    uint
	SubcategoryID *uint
	Condition     string
	Location      string
	Tags          []string
	Plan          string
	MediaURLs     []string
}

// ListingService owns the listing lifecycle: publish, edit, moderate, delete.
type ListingService struct {
	listings   listingStore
	categories categoryStore
	plans      planStore
	users      listingCounter
	cache      *cache.Cache
	events     *events.Publisher
	notify     *NotificationService
}

func NewListingService(listings listingStore, categories categoryStore, plans planStore, users listingCounter, c *cache.Cache, ev *events.Publisher, notify *NotificationService) *ListingService {
	return &ListingService{
		listings:   listings,
		categories: categories,
		plans:      plans,
		users:      users,
		cache:      c,
		events:     ev,
		notify:     notify,
	}
}

// Publish validates a draft and persists it. Free-plan listings enter the
// moderation queue (PENDING) immediately; paid plans are held in
// PAYMENT_PENDING until their transaction completes, so an unpaid listing can
// never become publicly visible through any UI path.
func (s *ListingService) Publish(ctx context.Context, userID uint, in PublishInput) (*models.Listing, error) {
	if _, err := s.categories.GetByID(in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, err
	}
	if in.SubcategoryID != nil {
		sub, err := s.categories.GetByID(*in.SubcategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCategory
			}
			return nil, err
		}
		if sub.ParentID == nil || *sub.ParentID != in.CategoryID {
			return nil, ErrInvalidCategory
		}
	}

	planCode := strings.ToUpper(strings.TrimSpace(in.Plan))
	if planCode == "" {
		planCode = domain.PlanFree
	}
	plan, err := s.plans.GetByCode(planCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPlan
		}
		return nil, err
	}

	images, err := buildImages(in.MediaURLs)
	if err != nil {
		return nil, err
	}

	condition := strings.ToUpper(strings.TrimSpace(in.Condition))
	if condition != domain.ConditionNew {
		condition = domain.ConditionUsed
	}

	status := domain.ListingPending
	if !plan.Free() {
		status = domain.ListingPaymentPending
	}

	l := &models.Listing{
		UserID:        userID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		PriceCents:    in.PriceCents,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Condition:     condition,
		Location:      in.Location,
		Tags:          strings.Join(in.Tags, ","),
		Plan:          plan.Code,
		Status:        status,
		Featured:      plan.Featured,
		Images:        images,
	}
	if err := s.listings.Create(l); err != nil {
		return nil, err
	}

	// Counter is advisory; a failed increment never unwinds the listing.
	if err := s.users.IncrementListings(userID, 1); err != nil {
		log.Printf("[LISTING] listings_count +1 for user %d: %v", userID, err)
	}
	s.invalidateFeed(ctx)
	return l, nil
}

// buildImages rejects any reference that is not a durable URL. Ingestion
// happens before publish; data:/blob: leftovers mean the client skipped it.
func buildImages(urls []string) ([]models.ListingImage, error) {
	images := make([]models.ListingImage, 0, len(urls))
	for i, u := range urls {
		if mediabuf.Classify(u) != mediabuf.SchemeHTTP {
			return nil, ErrEphemeralMedia
		}
		images = append(images, models.ListingImage{
			URL:       u,
			MediaType: guessTypeFromURL(u),
			Position:  i,
		})
	}
	return images, nil
}

// Update edits an owned listing. Edits to an ACTIVE listing send it back to
// the moderation queue.
func (s *ListingService) Update(ctx context.Context, userID, listingID uint, in PublishInput) (*models.Listing, error) {
	l, err := s.get(listingID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, ErrNotOwner
	}
	if in.CategoryID != 0 && in.CategoryID != l.CategoryID {
		if _, err := s.categories.GetByID(in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCategory
			}
			return nil, err
		}
		l.CategoryID = in.CategoryID
		l.SubcategoryID = nil
	}
	if in.Title != "" {
		l.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		l.Description = in.Description
	}
	if in.PriceCents > 0 {
		l.PriceCents = in.PriceCents
	}
	if in.Condition != "" {
		c := strings.ToUpper(strings.TrimSpace(in.Condition))
		if c == domain.ConditionNew || c == domain.ConditionUsed {
			l.Condition = c
		}
	}
	if in.Location != "" {
		l.Location = in.Location
	}
	if len(in.Tags) > 0 {
		l.Tags = strings.Join(in.Tags, ",")
	}
	if l.Status == domain.ListingActive {
		l.Status = domain.ListingPending
	}
	if err := s.listings.Update(l); err != nil {
		return nil, err
	}
	if len(in.MediaURLs) > 0 {
		images, err := buildImages(in.MediaURLs)
		if err != nil {
			return nil, err
		}
		if err := s.listings.ReplaceImages(l.ID, images); err != nil {
			return nil, err
		}
		l.Images = images
	}
	s.invalidateFeed(ctx)
	return l, nil
}

// Delete removes a listing (owner or admin) and decrements the owner's
// counter, floored at zero by the store.
func (s *ListingService) Delete(ctx context.Context, actorID uint, isAdmin bool, listingID uint) error {
	l, err := s.get(listingID)
	if err != nil {
		return err
	}
	if l.UserID != actorID && !isAdmin {
		return ErrNotOwner
	}
	if err := s.listings.Delete(listingID); err != nil {
		return err
	}
	if err := s.users.IncrementListings(l.UserID, -1); err != nil {
		log.Printf("[LISTING] listings_count -1 for user %d: %v", l.UserID, err)
	}
	s.invalidateFeed(ctx)
	return nil
}

// Moderate applies an admin decision as one conditional transition
// PENDING -> ACTIVE|REJECTED. A listing that already left the queue (or was
// never in it) returns ErrNotAwaitingReview instead of silently overwriting.
func (s *ListingService) Moderate(ctx context.Context, adminID, listingID uint, approve bool, reason string) (*models.Listing, error) {
	l, err := s.get(listingID)
	if err != nil {
		return nil, err
	}

	to := domain.ListingRejected
	if approve {
		to = domain.ListingActive
	}
	rows, err := s.listings.UpdateStatus(listingID, domain.ListingPending, to)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotAwaitingReview
	}
	l.Status = to

	if approve {
		plan, err := s.plans.GetByCode(l.Plan)
		if err == nil && plan.DurationDays > 0 {
			exp := time.Now().AddDate(0, 0, plan.DurationDays)
			l.ExpiresAt = &exp
			if err := s.listings.Update(l); err != nil {
				log.Printf("[LISTING] set expiry for %d: %v", l.ID, err)
			}
		}
		_ = s.notify.NotifyListingApproved(l.UserID, l.ID, l.Title)
		s.publishEvent(ctx, events.QueueListingPublished, events.ListingPublishedEvent{
			ListingID:  l.ID,
			UserID:     l.UserID,
			Plan:       l.Plan,
			OccurredAt: time.Now().UTC(),
		})
	} else {
		_ = s.notify.NotifyListingRejected(l.UserID, l.ID, l.Title, reason)
	}

	// Analytics event is best-effort; the decision stands even if it drops.
	s.publishEvent(ctx, events.QueueModerationDecided, events.ModerationDecidedEvent{
		ListingID:  l.ID,
		AdminID:    adminID,
		Decision:   to,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	s.invalidateFeed(ctx)
	return l, nil
}

// OnPaymentCompleted releases a paid listing into the moderation queue. The
// transition is conditional, so a replayed webhook is a no-op.
func (s *ListingService) OnPaymentCompleted(ctx context.Context, listingID uint, extraDays int) error {
	rows, err := s.listings.UpdateStatus(listingID, domain.ListingPaymentPending, domain.ListingPending)
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}
	if extraDays > 0 {
		l, err := s.get(listingID)
		if err == nil {
			base := time.Now()
			if l.ExpiresAt != nil {
				base = *l.ExpiresAt
			}
			exp := base.AddDate(0, 0, extraDays)
			l.ExpiresAt = &exp
			if err := s.listings.Update(l); err != nil {
				log.Printf("[LISTING] extra days for %d: %v", listingID, err)
			}
		}
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *ListingService) get(id uint) (*models.Listing, error) {
	l, err := s.listings.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *ListingService) publishEvent(ctx context.Context, queue string, ev interface{}) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, queue, ev)
}

func (s *ListingService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, "listings:feed:first")
}
