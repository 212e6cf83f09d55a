package handler

import (
	"log"
	"net/http"

	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc       *service.AuthService
	auditRepo *repository.AuditLogRepository
}

func NewAuthHandler(svc *service.AuthService, auditRepo *repository.AuditLogRepository) *AuthHandler {
	return &AuthHandler{svc: svc, auditRepo: auditRepo}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=64"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Register(req.Email, req.Username, req.Phone, req.Password)
	if err != nil {
		switch err {
		case service.ErrEmailExists, service.ErrUsernameExists:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Printf("[AUTH] register failed: email=%s err=%v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	h.auditLog(&u.ID, "register", c)
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrInvalidCreds:
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case service.ErrSuspended:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			log.Printf("[AUTH] login failed: email=%s err=%v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	h.auditLog(&u.ID, "login", c)
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, refresh, err := h.svc.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.auditLog(&userID, "change_password", c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout is client-driven (tokens are stateless); it only records the event.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	h.auditLog(&userID, "logout", c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) auditLog(userID *uint, action string, c *gin.Context) {
	if h.auditRepo == nil {
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  "auth",
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
