package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"sokoni/pkg/money"
)

// MpesaProvider implements M-Pesa STK push via an aggregator card API.
// There is no checkout URL; the customer approves the push on their phone and
// the aggregator calls back on the configured webhook.
type MpesaProvider struct {
	BaseURL  string
	Email    string
	Password string
	client   *http.Client
}

func NewMpesaProvider(baseURL, email, password string) *MpesaProvider {
	if baseURL == "" {
		baseURL = "https://card-api.theliberec.com"
	}
	return &MpesaProvider{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type mpesaLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type mpesaLoginResp struct {
	Token string `json:"token"`
}

// getToken logs in per transaction, as the aggregator recommends.
func (p *MpesaProvider) getToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(mpesaLoginReq{Email: p.Email, Password: p.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/merchants/login", bytes.NewReader(body))
	if err != nil {
		return "", networkErr("build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", networkErr("login call", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", gatewayErr(fmt.Sprintf("login failed: %d", resp.StatusCode), nil)
	}
	var out mpesaLoginResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", gatewayErr("login: bad response body", err)
	}
	return out.Token, nil
}

type mpesaSTKReq struct {
	Amount        string `json:"amount"` // whole currency units
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	CustomerPhone string `json:"customer_phone"`
	CallbackURL   string `json:"callback_url"`
	OrderID       string `json:"order_id"`
}

type mpesaSTKResp struct {
	UUID                string `json:"uuid"`
	OrderID             string `json:"order_id"`
	MerchantOrderID     string `json:"merchant_order_id"`
	CheckoutRequestID   string `json:"checkout_request_id"`
	Status              string `json:"status"`
	ResponseCode        string `json:"response_code"`
	ResponseDescription string `json:"response_description"`
}

func (p *MpesaProvider) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	if req.AmountMinor <= 0 {
		return nil, validationErr("amount must be positive")
	}
	if req.Phone == "" {
		return nil, validationErr("payer phone required")
	}
	if req.Reference == "" {
		return nil, validationErr("reference required")
	}
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, err
	}
	// The aggregator takes whole KES; sub-unit remainders round up so the
	// customer is never pushed less than the ledgered amount.
	amount := req.AmountMinor / 100
	if req.AmountMinor%100 != 0 {
		amount++
	}
	payload := mpesaSTKReq{
		Amount:        strconv.FormatInt(amount, 10),
		Currency:      req.Currency,
		Description:   req.Description,
		CustomerPhone: req.Phone,
		CallbackURL:   req.CallbackURL,
		OrderID:       req.Reference,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/transactions/mpesa", bytes.NewReader(body))
	if err != nil {
		return nil, networkErr("build stk request", err)
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	log.Printf("[MPESA] STK push reference=%s amount=%s phone=%s", req.Reference, money.FromMinorUnits(req.AmountMinor), req.Phone)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, networkErr("stk call", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[MPESA] STK status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, gatewayErr(fmt.Sprintf("stk push: %d", resp.StatusCode), nil)
	}
	var out mpesaSTKResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, gatewayErr("stk: bad response body", err)
	}
	return &InitResult{
		AccessCode: out.CheckoutRequestID,
		Reference:  req.Reference,
	}, nil
}

func (p *MpesaProvider) Verify(ctx context.Context, reference string) (bool, error) {
	// The aggregator has no query endpoint; completion arrives via webhook and
	// the caller polls the ledger row instead.
	return false, nil
}

type mpesaB2CReq struct {
	Amount      string `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
	OrderID     string `json:"order_id"`
}

// Refund reverses a completed STK payment with a B2C transfer back to the
// payer's phone. The derived order id keeps repeated reversal calls for one
// reference idempotent on the aggregator side.
func (p *MpesaProvider) Refund(ctx context.Context, req RefundRequest) error {
	if req.Reference == "" {
		return validationErr("reference required")
	}
	if req.Phone == "" {
		return validationErr("payer phone required for reversal")
	}
	token, err := p.getToken(ctx)
	if err != nil {
		return err
	}
	amount := req.AmountMinor / 100
	if req.AmountMinor%100 != 0 {
		amount++
	}
	payload := mpesaB2CReq{
		Amount:      strconv.FormatInt(amount, 10),
		PhoneNumber: req.Phone,
		Description: "Reversal for " + req.Reference,
		Remarks:     "Refund",
		OrderID:     "rev-" + req.Reference,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/transactions/mpesa/b2c", bytes.NewReader(body))
	if err != nil {
		return networkErr("build b2c request", err)
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return networkErr("b2c call", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[MPESA] B2C status=%d body=%s", resp.StatusCode, string(respBody))
		return gatewayErr(fmt.Sprintf("b2c: %d", resp.StatusCode), nil)
	}
	log.Printf("[MPESA] reversal issued reference=%s amount=%d", req.Reference, amount)
	return nil
}
