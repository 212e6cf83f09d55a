package handler

import (
	"net/http"
	"strconv"

	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	repo        *repository.ChatRepository
	listingRepo *repository.ListingRepository
	notifSvc    *service.NotificationService
	userRepo    *repository.UserRepository
}

func NewChatHandler(repo *repository.ChatRepository, listingRepo *repository.ListingRepository, userRepo *repository.UserRepository, notifSvc *service.NotificationService) *ChatHandler {
	return &ChatHandler{repo: repo, listingRepo: listingRepo, userRepo: userRepo, notifSvc: notifSvc}
}

type StartConversationRequest struct {
	ListingID uint   `json:"listing_id" binding:"required"`
	Body      string `json:"body"`
}

// Start opens (or returns) the caller's conversation about a listing and
// optionally sends a first message.
func (h *ChatHandler) Start(c *gin.Context) {
	buyerID := middleware.GetUserID(c)
	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.listingRepo.GetByID(req.ListingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if l.UserID == buyerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message your own listing"})
		return
	}
	conv, err := h.repo.GetOrCreateConversation(req.ListingID, buyerID, l.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation failed"})
		return
	}
	if req.Body != "" {
		m := &models.Message{ConversationID: conv.ID, SenderID: buyerID, Body: req.Body}
		if err := h.repo.CreateMessage(m); err == nil {
			h.notifyRecipient(conv, buyerID)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.repo.ListConversations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	convID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	conv, err := h.repo.GetConversation(uint(convID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your conversation"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	msgs, err := h.repo.ListMessages(conv.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	_ = h.repo.MarkRead(conv.ID, userID)
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type SendMessageRequest struct {
	Body     string `json:"body"`
	MediaURL string `json:"media_url"`
}

// Send posts a message over HTTP; the websocket room is the low-latency path
// and this is the fallback.
func (h *ChatHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	convID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Body == "" && req.MediaURL == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body or media_url required"})
		return
	}
	conv, err := h.repo.GetConversation(uint(convID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your conversation"})
		return
	}
	m := &models.Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		Body:           req.Body,
		MediaURL:       req.MediaURL,
	}
	if err := h.repo.CreateMessage(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "send failed"})
		return
	}
	h.notifyRecipient(conv, userID)
	c.JSON(http.StatusCreated, gin.H{"message": m})
}

func (h *ChatHandler) notifyRecipient(conv *models.Conversation, senderID uint) {
	recipient := conv.SellerID
	if senderID == conv.SellerID {
		recipient = conv.BuyerID
	}
	senderName := "Someone"
	if u, err := h.userRepo.GetByID(senderID); err == nil && u.Username != "" {
		senderName = u.Username
	}
	_ = h.notifSvc.NotifyNewMessage(recipient, senderName, conv.ID)
}
