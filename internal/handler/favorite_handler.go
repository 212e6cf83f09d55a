package handler

import (
	"net/http"
	"strconv"

	"sokoni/internal/middleware"
	"sokoni/internal/repository"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	repo        *repository.FavoriteRepository
	listingRepo *repository.ListingRepository
}

func NewFavoriteHandler(repo *repository.FavoriteRepository, listingRepo *repository.ListingRepository) *FavoriteHandler {
	return &FavoriteHandler{repo: repo, listingRepo: listingRepo}
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, _ := strconv.ParseUint(c.Param("listing_id"), 10, 64)
	if _, err := h.listingRepo.GetByID(uint(listingID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err := h.repo.Add(userID, uint(listingID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save listing"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, _ := strconv.ParseUint(c.Param("listing_id"), 10, 64)
	if err := h.repo.Remove(userID, uint(listingID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.repo.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}
