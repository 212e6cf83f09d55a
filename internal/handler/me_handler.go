package handler

import (
	"net/http"
	"strconv"

	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/repository"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo    *repository.UserRepository
	listingRepo *repository.ListingRepository
	media       *service.MediaService
}

func NewMeHandler(userRepo *repository.UserRepository, listingRepo *repository.ListingRepository, media *service.MediaService) *MeHandler {
	return &MeHandler{userRepo: userRepo, listingRepo: listingRepo, media: media}
}

func (h *MeHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

func (h *MeHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := map[string]interface{}{}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if len(fields) > 0 {
		if err := h.userRepo.UpdateFields(userID, fields); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
	}
	u, _ := h.userRepo.GetByID(userID)
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UploadAvatar ingests one image and stores its URL on the profile.
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	userID := middleware.GetUserID(c)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	res := h.media.IngestUpload(c.Request.Context(), userID, domain.PurposeAvatars, file.Filename, file.Header.Get("Content-Type"), f, file.Size)
	if res.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Err.Error()})
		return
	}
	if err := h.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": res.URL}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": res.URL})
}

type FCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *MeHandler) UpdateFCMToken(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userRepo.UpdateFields(userID, map[string]interface{}{"fcm_token": req.Token}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MyListings returns the caller's listings in every status, including drafts
// awaiting payment.
func (h *MeHandler) MyListings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.listingRepo.ListByUser(userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": list, "total": total})
}
