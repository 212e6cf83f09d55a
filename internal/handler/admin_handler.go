package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"
	"sokoni/pkg/money"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminRepo    *repository.AdminRepository
	listingRepo  *repository.ListingRepository
	discountRepo *repository.DiscountRepository
	auditRepo    *repository.AuditLogRepository
	listingSvc   *service.ListingService
}

func NewAdminHandler(
	adminRepo *repository.AdminRepository,
	listingRepo *repository.ListingRepository,
	discountRepo *repository.DiscountRepository,
	auditRepo *repository.AuditLogRepository,
	listingSvc *service.ListingService,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:    adminRepo,
		listingRepo:  listingRepo,
		discountRepo: discountRepo,
		auditRepo:    auditRepo,
		listingSvc:   listingSvc,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	users, total, err := h.adminRepo.ListUsers(c.Query("search"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

type SuspendRequest struct {
	Suspended bool `json:"suspended"`
}

func (h *AdminHandler) SuspendUser(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.adminRepo.UpdateUser(uint(id), map[string]interface{}{"suspended": req.Suspended}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	action := "user_unsuspend"
	if req.Suspended {
		action = "user_suspend"
	}
	h.audit(c, adminID, action, "user", strconv.FormatUint(id, 10))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListListings shows listings by status; defaults to the moderation queue.
func (h *AdminHandler) ListListings(c *gin.Context) {
	status := strings.ToUpper(c.DefaultQuery("status", domain.ListingPending))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.listingRepo.ListByStatus(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": list, "total": total})
}

type ModerateRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) Moderate(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.listingSvc.Moderate(c.Request.Context(), adminID, uint(id), req.Status == "approved", req.Reason)
	if err != nil {
		switch err {
		case service.ErrListingNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotAwaitingReview:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation failed"})
		}
		return
	}
	h.audit(c, adminID, "listing_"+req.Status, "listing", strconv.FormatUint(id, 10))
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func (h *AdminHandler) DeleteListing(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.listingSvc.Delete(c.Request.Context(), adminID, true, uint(id)); err != nil {
		if err == service.ErrListingNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	h.audit(c, adminID, "listing_delete", "listing", strconv.FormatUint(id, 10))
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.adminRepo.ListTransactions(strings.ToUpper(c.Query("status")), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "total": total})
}

// DiscountCodeRequest creates a code. Value carries percentage points or
// extra days depending on Type; fixed-amount codes instead supply Amount, a
// decimal KES string like "500.00". ExpiresAt is an optional YYYY-MM-DD date.
type DiscountCodeRequest struct {
	Code      string  `json:"code" binding:"required,min=3,max=64"`
	Type      string  `json:"type" binding:"required,oneof=PERCENTAGE_DISCOUNT FIXED_AMOUNT EXTRA_DAYS"`
	Value     float64 `json:"value"`
	Amount    string  `json:"amount"`
	ExpiresAt string  `json:"expires_at"`
	MaxUses   *int    `json:"max_uses"`
}

func (h *AdminHandler) CreateDiscount(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	var req DiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value := req.Value
	if req.Type == domain.DiscountFixed {
		// Fixed-amount codes are entered as a decimal price and stored in
		// minor units, same as every other amount in the ledger.
		minor, err := money.ToMinorUnits(req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount: " + err.Error()})
			return
		}
		value = float64(minor)
	} else if req.Value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be positive"})
		return
	}
	if req.Type == domain.DiscountPercentage && req.Value > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percentage value cannot exceed 100"})
		return
	}
	dc := &models.DiscountCode{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:            req.Type,
		Value:           value,
		MaxUses:         req.MaxUses,
		IsActive:        true,
		CreatedByUserID: &adminID,
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse("2006-01-02", req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires_at format (use YYYY-MM-DD)"})
			return
		}
		dc.ExpiresAt = &t
	}
	if err := h.discountRepo.Create(dc); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "code already exists"})
		return
	}
	h.audit(c, adminID, "discount_create", "discount_code", dc.Code)
	c.JSON(http.StatusCreated, gin.H{"discount_code": dc})
}

func (h *AdminHandler) ListDiscounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.discountRepo.List(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount_codes": list, "total": total})
}

type UpdateDiscountRequest struct {
	IsActive *bool `json:"is_active"`
	MaxUses  *int  `json:"max_uses"`
}

func (h *AdminHandler) UpdateDiscount(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dc, err := h.discountRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "discount code not found"})
		return
	}
	if req.IsActive != nil {
		dc.IsActive = *req.IsActive
	}
	if req.MaxUses != nil {
		dc.MaxUses = req.MaxUses
	}
	if err := h.discountRepo.Update(dc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.audit(c, adminID, "discount_update", "discount_code", dc.Code)
	c.JSON(http.StatusOK, gin.H{"discount_code": dc})
}

func (h *AdminHandler) audit(c *gin.Context, adminID uint, action, resource, resourceID string) {
	if h.auditRepo == nil {
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
