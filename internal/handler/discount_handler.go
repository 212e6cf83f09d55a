package handler

import (
	"net/http"

	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type DiscountHandler struct {
	svc *service.DiscountService
}

func NewDiscountHandler(svc *service.DiscountService) *DiscountHandler {
	return &DiscountHandler{svc: svc}
}

type ApplyDiscountRequest struct {
	Code        string `json:"code" binding:"required"`
	AmountCents int64  `json:"amount_cents"`
}

// Apply validates a code and previews the adjusted amount. Nothing is
// consumed here; redemption happens when the payment completes.
func (h *DiscountHandler) Apply(c *gin.Context) {
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Resolve(req.Code)
	if err != nil {
		switch err {
		case service.ErrCodeNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrCodeInactive, service.ErrCodeExpired, service.ErrCodeExhausted:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate code"})
		}
		return
	}
	out := gin.H{
		"code_id": res.CodeID,
		"type":    res.Type,
		"value":   res.Value,
	}
	if req.AmountCents > 0 {
		out["adjusted_amount_cents"] = res.Adjust(req.AmountCents)
	}
	if days := res.ExtraDays(); days > 0 {
		out["extra_days"] = days
	}
	c.JSON(http.StatusOK, out)
}
