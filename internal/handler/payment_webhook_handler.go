package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/events"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"
	"sokoni/internal/watch"
	"sokoni/internal/ws"

	"github.com/gin-gonic/gin"
)

// gatewayCallback accepts both webhook shapes we receive: Paystack nests the
// transaction under "data" with an "event" discriminator; the M-Pesa
// aggregator posts a flat object.
type gatewayCallback struct {
	// Paystack
	Event string `json:"event"`
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`

	// M-Pesa aggregator
	Status            string `json:"status"`
	MerchantOrderID   string `json:"merchant_order_id"`
	OrderID           string `json:"order_id"`
	ReferenceOrderID  string `json:"reference_order_id"`
	ReceiptNumber     string `json:"receipt_number"`
	CheckoutRequestID string `json:"checkout_request_id"`
}

func (p *gatewayCallback) reference() string {
	for _, ref := range []string{p.Data.Reference, p.MerchantOrderID, p.OrderID, p.ReferenceOrderID} {
		if ref != "" {
			return ref
		}
	}
	return ""
}

func (p *gatewayCallback) completed() bool {
	if p.Event != "" {
		return p.Event == "charge.success" || strings.EqualFold(p.Data.Status, "success")
	}
	return strings.EqualFold(p.Status, "COMPLETED")
}

func (p *gatewayCallback) pspID() string {
	if p.Data.ID != 0 {
		return strconv.FormatInt(p.Data.ID, 10)
	}
	if p.ReceiptNumber != "" {
		return p.ReceiptNumber
	}
	return p.CheckoutRequestID
}

type PaymentWebhookHandler struct {
	txRepo       *repository.TransactionRepository
	discountRepo *repository.DiscountRepository
	auditRepo    *repository.AuditLogRepository
	discountSvc  *service.DiscountService
	listingSvc   *service.ListingService
	notifSvc     *service.NotificationService
	broker       *watch.Broker
	hub          *ws.Hub
	events       *events.Publisher
}

func NewPaymentWebhookHandler(
	txRepo *repository.TransactionRepository,
	discountRepo *repository.DiscountRepository,
	auditRepo *repository.AuditLogRepository,
	discountSvc *service.DiscountService,
	listingSvc *service.ListingService,
	notifSvc *service.NotificationService,
	broker *watch.Broker,
	hub *ws.Hub,
	ev *events.Publisher,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		txRepo:       txRepo,
		discountRepo: discountRepo,
		auditRepo:    auditRepo,
		discountSvc:  discountSvc,
		listingSvc:   listingSvc,
		notifSvc:     notifSvc,
		broker:       broker,
		hub:          hub,
		events:       ev,
	}
}

// Handle processes a gateway callback. The ledger row is moved to its terminal
// status with one conditional update, so replayed webhooks (gateways retry)
// and the race against the poll path both collapse to a single winner; side
// effects run only on the winning delivery.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[WEBHOOK] read body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	log.Printf("[WEBHOOK] raw body: %s", string(body))
	var payload gatewayCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[WEBHOOK] unmarshal: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	reference := payload.reference()
	if reference == "" {
		log.Printf("[WEBHOOK] no reference in payload, acknowledging")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	tx, err := h.txRepo.GetByReference(reference)
	if err != nil || tx == nil {
		log.Printf("[WEBHOOK] no transaction for reference=%s", reference)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if tx.Terminal() {
		log.Printf("[WEBHOOK] transaction %d already %s for reference=%s", tx.ID, tx.Status, reference)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	status := domain.TxFailed
	if payload.completed() {
		status = domain.TxCompleted
	}
	won, err := h.txRepo.MarkTerminal(tx.ID, status, payload.pspID())
	if err != nil {
		log.Printf("[WEBHOOK] mark terminal reference=%s: %v", reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !won {
		// Lost the race to another delivery; the winner did the side effects.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// Settlement runs before any push delivery: the terminal update already
	// won, so nothing on the notification path may stand between it and the
	// side effects.
	if status == domain.TxCompleted {
		h.settle(c, tx)
	}

	h.broker.Publish(reference, status)
	h.hub.BroadcastToUser(tx.UserID, gin.H{
		"type":      "payment_update",
		"reference": reference,
		"status":    status,
	})
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentWebhookHandler) settle(c *gin.Context, tx *models.Transaction) {
	ctx := c.Request.Context()

	if tx.ListingID != nil {
		extraDays := 0
		if tx.DiscountCodeID != nil {
			if dc, err := h.discountRepo.GetByID(*tx.DiscountCodeID); err == nil && dc.Type == domain.DiscountExtraDays {
				extraDays = int(dc.Value)
			}
		}
		if err := h.listingSvc.OnPaymentCompleted(ctx, *tx.ListingID, extraDays); err != nil {
			log.Printf("[WEBHOOK] release listing %d: %v", *tx.ListingID, err)
		}
	}
	if tx.DiscountCodeID != nil {
		if err := h.discountSvc.Redeem(*tx.DiscountCodeID); err != nil {
			log.Printf("[WEBHOOK] redeem code %d: %v", *tx.DiscountCodeID, err)
		}
	}
	_ = h.notifSvc.NotifyPaymentConfirmed(tx.UserID, tx.AmountCents, tx.Reference)

	if h.events != nil {
		_ = h.events.Publish(ctx, events.QueuePaymentCompleted, events.PaymentCompletedEvent{
			TransactionID: tx.ID,
			UserID:        tx.UserID,
			AmountCents:   tx.AmountCents,
			Reference:     tx.Reference,
			OccurredAt:    time.Now().UTC(),
		})
	}
	if h.auditRepo != nil {
		_ = h.auditRepo.Create(&models.AuditLog{
			UserID:     &tx.UserID,
			Action:     "payment_completed",
			Resource:   "transaction",
			ResourceID: tx.Reference,
			IP:         c.ClientIP(),
		})
	}
}
