package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"sokoni/config"
	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"
	"sokoni/internal/watch"
	"sokoni/pkg/payment"

	"github.com/gin-gonic/gin"
)

const referencePrefix = "soko"

type PaymentHandler struct {
	cfg          *config.Config
	txRepo       *repository.TransactionRepository
	listingRepo  *repository.ListingRepository
	planRepo     *repository.PlanRepository
	userRepo     *repository.UserRepository
	auditRepo    *repository.AuditLogRepository
	discountRepo *repository.DiscountRepository
	discountSvc  *service.DiscountService
	listingSvc   *service.ListingService
	notifSvc     *service.NotificationService
	broker       *watch.Broker
	card         payment.Provider
	mpesa        payment.Provider
}

func NewPaymentHandler(
	cfg *config.Config,
	txRepo *repository.TransactionRepository,
	listingRepo *repository.ListingRepository,
	planRepo *repository.PlanRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditLogRepository,
	discountRepo *repository.DiscountRepository,
	discountSvc *service.DiscountService,
	listingSvc *service.ListingService,
	notifSvc *service.NotificationService,
	broker *watch.Broker,
) *PaymentHandler {
	h := &PaymentHandler{
		cfg:          cfg,
		txRepo:       txRepo,
		listingRepo:  listingRepo,
		planRepo:     planRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		discountRepo: discountRepo,
		discountSvc:  discountSvc,
		listingSvc:   listingSvc,
		notifSvc:     notifSvc,
		broker:       broker,
	}
	if cfg.Payment.Provider == "stub" {
		stub := payment.NewStubProvider()
		h.card, h.mpesa = stub, stub
	} else {
		h.card = payment.NewPaystackProvider(cfg.Payment.PaystackBaseURL, cfg.Payment.PaystackSecret)
		h.mpesa = payment.NewMpesaProvider(cfg.Payment.MpesaBaseURL, cfg.Payment.MpesaEmail, cfg.Payment.MpesaPassword)
	}
	return h
}

type InitiateRequest struct {
	Method       string `json:"method" binding:"required,oneof=CARD MPESA"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ListingID    *uint  `json:"listing_id"`
	PlanID       *uint  `json:"plan_id"`
	DiscountCode string `json:"discount_code"`
}

// Initiate starts a paid-listing payment. The amount always comes from the
// plan on record, never from the client. The ledger row is inserted PENDING
// with its reference before the gateway is contacted, so every gateway
// interaction is traceable even if we crash mid-flow.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Method == domain.MethodCard && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required for card payments"})
		return
	}
	if req.Method == domain.MethodMpesa && req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone required for m-pesa payments"})
		return
	}

	plan, listing, err := h.resolveTarget(userID, req.ListingID, req.PlanID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if listing != nil && listing.Status != domain.ListingPaymentPending {
		c.JSON(http.StatusConflict, gin.H{"error": "listing is not awaiting payment"})
		return
	}

	amount := plan.PriceCents
	var discountID *uint
	extraDays := 0
	if req.DiscountCode != "" {
		res, err := h.discountSvc.Resolve(req.DiscountCode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		amount = res.Adjust(amount)
		extraDays = res.ExtraDays()
		id := res.CodeID
		discountID = &id
	}

	reference := payment.NewReference(referencePrefix, userID)
	tx := &models.Transaction{
		UserID:         userID,
		AmountCents:    amount,
		Currency:       h.cfg.Payment.Currency,
		Provider:       h.cfg.Payment.Provider,
		PaymentMethod:  req.Method,
		Reference:      reference,
		Status:         domain.TxPending,
		ListingID:      req.ListingID,
		PlanID:         &plan.ID,
		DiscountCodeID: discountID,
	}
	if err := h.txRepo.Create(tx); err != nil {
		log.Printf("[PAYMENT] ledger insert failed ref=%s: %v", reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record payment"})
		return
	}

	// A code can zero out the whole price; no gateway round-trip needed.
	if amount == 0 {
		if won, err := h.txRepo.MarkTerminal(tx.ID, domain.TxCompleted, ""); err != nil || !won {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record payment"})
			return
		}
		tx.Status = domain.TxCompleted
		h.settleCompleted(c, tx, extraDays)
		c.JSON(http.StatusCreated, gin.H{
			"success":     true,
			"reference":   reference,
			"transaction": tx,
		})
		return
	}

	provider := h.card
	if req.Method == domain.MethodMpesa {
		provider = h.mpesa
	}
	result, err := provider.Initialize(c.Request.Context(), payment.InitRequest{
		UserID:      userID,
		AmountMinor: amount,
		Currency:    h.cfg.Payment.Currency,
		Email:       req.Email,
		Phone:       req.Phone,
		Description: "Sokoni " + plan.Name + " listing",
		Reference:   reference,
		CallbackURL: h.cfg.Payment.WebhookBaseURL + "/api/v1/webhooks/payments",
	})
	if err != nil {
		if _, markErr := h.txRepo.MarkTerminal(tx.ID, domain.TxFailed, ""); markErr != nil {
			log.Printf("[PAYMENT] mark failed ref=%s: %v", reference, markErr)
		}
		var perr *payment.Error
		if errors.As(err, &perr) && perr.Stage == payment.StageValidation {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Message, "reference": reference})
			return
		}
		log.Printf("[PAYMENT] initialize ref=%s: %v", reference, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "payment gateway unavailable, please try again",
			"retryable": true,
			"reference": reference,
		})
		return
	}

	// Redirect-style gateways hand the user off to a hosted checkout; the
	// webhook will finish the flow. STK push confirms in-session, so we hold
	// the request for the bounded confirmation window.
	if result.AuthorizationURL != "" {
		c.JSON(http.StatusCreated, gin.H{
			"success":           true,
			"authorization_url": result.AuthorizationURL,
			"access_code":       result.AccessCode,
			"reference":         reference,
			"transaction":       tx,
		})
		return
	}

	sub, cancel := h.broker.Subscribe(reference)
	defer cancel()
	watcher := &watch.Watcher{
		Fetch: func(ctx context.Context) (string, error) {
			row, err := h.txRepo.GetByReference(reference)
			if err != nil {
				return "", err
			}
			return row.Status, nil
		},
		Push:     sub,
		Interval: h.cfg.Payment.PollInterval,
		Window:   h.cfg.Payment.ConfirmWindow,
	}
	outcome := watcher.Wait(c.Request.Context(), nil)

	tx, _ = h.txRepo.GetByID(tx.ID)
	switch {
	case outcome.TimedOut:
		c.JSON(http.StatusAccepted, gin.H{
			"success":     false,
			"status":      domain.TxPending,
			"reference":   reference,
			"message":     "We could not confirm your payment in time. If you completed it, it will reflect shortly; otherwise contact support quoting reference " + reference + ".",
			"transaction": tx,
		})
	case outcome.Status == domain.TxCompleted:
		c.JSON(http.StatusCreated, gin.H{
			"success":     true,
			"status":      outcome.Status,
			"reference":   reference,
			"transaction": tx,
		})
	default:
		c.JSON(http.StatusPaymentRequired, gin.H{
			"success":     false,
			"status":      outcome.Status,
			"reference":   reference,
			"transaction": tx,
		})
	}
}

// resolveTarget figures out what is being paid for: an existing listing's
// plan, or a bare plan purchase.
func (h *PaymentHandler) resolveTarget(userID uint, listingID, planID *uint) (*models.Plan, *models.Listing, error) {
	if listingID != nil {
		l, err := h.listingRepo.GetByID(*listingID)
		if err != nil {
			return nil, nil, errors.New("listing not found")
		}
		if l.UserID != userID {
			return nil, nil, errors.New("listing not found")
		}
		plan, err := h.planRepo.GetByCode(l.Plan)
		if err != nil {
			return nil, nil, errors.New("listing plan not found")
		}
		return plan, l, nil
	}
	if planID != nil {
		plan, err := h.planRepo.GetByID(*planID)
		if err != nil {
			return nil, nil, errors.New("plan not found")
		}
		return plan, nil, nil
	}
	return nil, nil, errors.New("listing_id or plan_id required")
}

// settleCompleted runs the completion side effects for a transaction this
// request already moved to COMPLETED (zero-amount path only; webhook handles
// the gateway path).
func (h *PaymentHandler) settleCompleted(c *gin.Context, tx *models.Transaction, extraDays int) {
	ctx := c.Request.Context()
	if tx.ListingID != nil {
		if err := h.listingSvc.OnPaymentCompleted(ctx, *tx.ListingID, extraDays); err != nil {
			log.Printf("[PAYMENT] release listing %d: %v", *tx.ListingID, err)
		}
	}
	if tx.DiscountCodeID != nil {
		if err := h.discountSvc.Redeem(*tx.DiscountCodeID); err != nil {
			log.Printf("[PAYMENT] redeem code %d: %v", *tx.DiscountCodeID, err)
		}
	}
	_ = h.notifSvc.NotifyPaymentConfirmed(tx.UserID, tx.AmountCents, tx.Reference)
}

// Status lets a client re-check a transaction after a timeout or redirect.
func (h *PaymentHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var tx *models.Transaction
	var err error
	if ref := c.Query("reference"); ref != "" {
		tx, err = h.txRepo.GetByReference(ref)
	} else if idStr := c.Query("id"); idStr != "" {
		id, _ := strconv.ParseUint(idStr, 10, 64)
		tx, err = h.txRepo.GetByID(uint(id))
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference or id required"})
		return
	}
	if err != nil || tx == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if tx.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your transaction"})
		return
	}

	// If the webhook is lagging, ask the gateway directly. The conditional
	// terminal update keeps this from double-settling against a concurrent
	// webhook delivery.
	if tx.Status == domain.TxPending {
		provider := h.card
		if tx.PaymentMethod == domain.MethodMpesa {
			provider = h.mpesa
		}
		if ok, err := provider.Verify(c.Request.Context(), tx.Reference); err == nil && ok {
			won, err := h.txRepo.MarkTerminal(tx.ID, domain.TxCompleted, "")
			if err == nil && won {
				h.broker.Publish(tx.Reference, domain.TxCompleted)
				extraDays := 0
				if tx.DiscountCodeID != nil {
					if dc, err := h.discountRepo.GetByID(*tx.DiscountCodeID); err == nil && dc.Type == domain.DiscountExtraDays {
						extraDays = int(dc.Value)
					}
				}
				h.settleCompleted(c, tx, extraDays)
			}
			if fresh, err := h.txRepo.GetByID(tx.ID); err == nil {
				tx = fresh
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       tx.Status,
		"reference":    tx.Reference,
		"amount_cents": tx.AmountCents,
		"completed_at": tx.CompletedAt,
	})
}

// Refund reverses a completed payment through the original gateway. Admin
// only. The ledger flips COMPLETED to REFUNDED first; if the gateway call
// then fails we roll the flip back so the row never lies about money moved.
func (h *PaymentHandler) Refund(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	tx, err := h.txRepo.GetByID(uint(id))
	if err != nil || tx == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	won, err := h.txRepo.MarkRefunded(tx.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update transaction"})
		return
	}
	if !won {
		c.JSON(http.StatusConflict, gin.H{"error": "only completed transactions can be refunded", "status": tx.Status})
		return
	}

	req := payment.RefundRequest{Reference: tx.Reference, AmountMinor: tx.AmountCents}
	if tx.PaymentMethod == domain.MethodMpesa {
		if payer, err := h.userRepo.GetByID(tx.UserID); err == nil {
			req.Phone = payer.Phone
		}
	}
	provider := h.card
	if tx.PaymentMethod == domain.MethodMpesa {
		provider = h.mpesa
	}
	if err := provider.Refund(c.Request.Context(), req); err != nil {
		log.Printf("[PAYMENT] refund ref=%s: %v", tx.Reference, err)
		if rbErr := h.txRepo.RestoreCompleted(tx.ID); rbErr != nil {
			log.Printf("[PAYMENT] refund rollback ref=%s: %v", tx.Reference, rbErr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway refund failed", "retryable": true})
		return
	}

	if h.auditRepo != nil {
		_ = h.auditRepo.Create(&models.AuditLog{
			UserID:     &adminID,
			Action:     "transaction_refund",
			Resource:   "transaction",
			ResourceID: tx.Reference,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
	log.Printf("[PAYMENT] refunded ref=%s amount=%d by admin=%d", tx.Reference, tx.AmountCents, adminID)
	c.JSON(http.StatusOK, gin.H{"success": true, "reference": tx.Reference, "status": domain.TxRefunded})
}

// History lists the caller's transactions, newest first.
func (h *PaymentHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.txRepo.ListByUser(userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "total": total})
}
