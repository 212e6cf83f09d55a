package handler

import (
	"net/http"
	"strconv"

	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	repo        *repository.ReportRepository
	listingRepo *repository.ListingRepository
}

func NewReportHandler(repo *repository.ReportRepository, listingRepo *repository.ListingRepository) *ReportHandler {
	return &ReportHandler{repo: repo, listingRepo: listingRepo}
}

type ReportRequest struct {
	ListingID uint   `json:"listing_id" binding:"required"`
	Reason    string `json:"reason" binding:"required,max=50"`
	Details   string `json:"details" binding:"max=2000"`
}

func (h *ReportHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.listingRepo.GetByID(req.ListingID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	r := &models.Report{
		ReporterID: userID,
		ListingID:  req.ListingID,
		Reason:     req.Reason,
		Details:    req.Details,
	}
	if err := h.repo.Create(r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": r})
}

// List is the admin view of reports, filterable by status.
func (h *ReportHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.repo.List(c.Query("status"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": list, "total": total})
}

func (h *ReportHandler) Resolve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.Resolve(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
