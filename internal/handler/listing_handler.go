package handler

import (
	"net/http"
	"strconv"

	"sokoni/internal/cache"
	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	svc          *service.ListingService
	listingRepo  *repository.ListingRepository
	categoryRepo *repository.CategoryRepository
	cache        *cache.Cache
}

func NewListingHandler(svc *service.ListingService, listingRepo *repository.ListingRepository, categoryRepo *repository.CategoryRepository, c *cache.Cache) *ListingHandler {
	return &ListingHandler{svc: svc, listingRepo: listingRepo, categoryRepo: categoryRepo, cache: c}
}

type ListingRequest struct {
	Title         string   `json:"title" binding:"required,max=255"`
	Description   string   `json:"description"`
	PriceCents    int64    `json:"price_cents" binding:"required,min=1"`
	CategoryID    uint     `json:"category_id" binding:"required"`
	SubcategoryID *uint    `json:"subcategory_id"`
	Condition     string   `json:"condition"`
	Location      string   `json:"location"`
	Tags          []string `json:"tags"`
	Plan          string   `json:"plan"`
	MediaURLs     []string `json:"media_urls"`
}

func (r *ListingRequest) toInput() service.PublishInput {
	return service.PublishInput{
		Title:         r.Title,
		Description:   r.Description,
		PriceCents:    r.PriceCents,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		Condition:     r.Condition,
		Location:      r.Location,
		Tags:          r.Tags,
		Plan:          r.Plan,
		MediaURLs:     r.MediaURLs,
	}
}

func (h *ListingHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.svc.Publish(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.writeListingErr(c, err)
		return
	}
	resp := gin.H{"listing": l}
	if l.Status == domain.ListingPaymentPending {
		resp["payment_required"] = true
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateListingRequest is the edit shape: every field optional, zero values
// mean "leave as is".
type UpdateListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	CategoryID  uint     `json:"category_id"`
	Condition   string   `json:"condition"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	MediaURLs   []string `json:"media_urls"`
}

func (h *ListingHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.svc.Update(c.Request.Context(), userID, uint(id), service.PublishInput{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		CategoryID:  req.CategoryID,
		Condition:   req.Condition,
		Location:    req.Location,
		Tags:        req.Tags,
		MediaURLs:   req.MediaURLs,
	})
	if err != nil {
		h.writeListingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func (h *ListingHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.svc.Delete(c.Request.Context(), userID, false, uint(id)); err != nil {
		h.writeListingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Get returns one listing. Non-active listings are visible only to their
// owner (and admins via the admin surface). Each public view bumps the
// counter.
func (h *ListingHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	l, err := h.listingRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if l.Status != domain.ListingActive && l.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if l.Status == domain.ListingActive {
		_ = h.listingRepo.IncrementViews(l.ID)
		l.Views++
	}
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

// Feed is the public browse endpoint. The unfiltered first page is cached.
func (h *ListingHandler) Feed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	catID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	subID, _ := strconv.ParseUint(c.Query("subcategory_id"), 10, 64)
	minPrice, _ := strconv.ParseInt(c.Query("min_price_cents"), 10, 64)
	maxPrice, _ := strconv.ParseInt(c.Query("max_price_cents"), 10, 64)
	f := repository.FeedFilter{
		CategoryID:    uint(catID),
		SubcategoryID: uint(subID),
		Query:         c.Query("q"),
		MinPriceCents: minPrice,
		MaxPriceCents: maxPrice,
		Sort:          c.Query("sort"),
	}

	unfiltered := f == (repository.FeedFilter{}) && page == 1
	if unfiltered && h.cache != nil {
		var cached gin.H
		if h.cache.Get(c.Request.Context(), "listings:feed:first", &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	list, total, err := h.listingRepo.Feed(f, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed failed"})
		return
	}
	out := gin.H{"listings": list, "total": total, "page": page}
	if unfiltered && h.cache != nil {
		h.cache.Set(c.Request.Context(), "listings:feed:first", out)
	}
	c.JSON(http.StatusOK, out)
}

// Categories returns the full category tree (cached).
func (h *ListingHandler) Categories(c *gin.Context) {
	if h.cache != nil {
		var cached []models.Category
		if h.cache.Get(c.Request.Context(), "categories:tree", &cached) {
			c.JSON(http.StatusOK, gin.H{"categories": cached})
			return
		}
	}
	tree, err := h.categoryRepo.ListTree()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "categories failed"})
		return
	}
	if h.cache != nil {
		h.cache.Set(c.Request.Context(), "categories:tree", tree)
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

func (h *ListingHandler) writeListingErr(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidCategory, service.ErrInvalidPlan, service.ErrEphemeralMedia:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrNotOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case service.ErrListingNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing operation failed"})
	}
}
