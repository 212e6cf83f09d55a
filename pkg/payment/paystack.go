package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PaystackProvider implements card/bank payments via the Paystack API.
// Amounts are sent in minor units as Paystack expects.
type PaystackProvider struct {
	BaseURL string
	Secret  string
	client  *http.Client
}

func NewPaystackProvider(baseURL, secret string) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackProvider{
		BaseURL: baseURL,
		Secret:  secret,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type paystackInitReq struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // minor units
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *PaystackProvider) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	if req.AmountMinor <= 0 {
		return nil, validationErr("amount must be positive")
	}
	if req.Email == "" {
		return nil, validationErr("payer email required")
	}
	if req.Reference == "" {
		return nil, validationErr("reference required")
	}
	payload := paystackInitReq{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	}
	var out paystackInitResp
	if err := p.post(ctx, "/transaction/initialize", payload, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, gatewayErr(out.Message, nil)
	}
	log.Printf("[PAYSTACK] initialized reference=%s access_code=%s", out.Data.Reference, out.Data.AccessCode)
	return &InitResult{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        out.Data.Reference,
	}, nil
}

type paystackVerifyResp struct {
	Status bool `json:"status"`
	Data   struct {
		Status string `json:"status"` // success, failed, abandoned
		ID     int64  `json:"id"`
	} `json:"data"`
}

func (p *PaystackProvider) Verify(ctx context.Context, reference string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return false, networkErr("build verify request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.Secret)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return false, networkErr("verify call", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return false, gatewayErr(fmt.Sprintf("verify: %d", resp.StatusCode), nil)
	}
	var out paystackVerifyResp
	if err := json.Unmarshal(body, &out); err != nil {
		return false, gatewayErr("verify: bad response body", err)
	}
	return out.Status && out.Data.Status == "success", nil
}

type paystackRefundReq struct {
	Transaction string `json:"transaction"` // reference
	Amount      int64  `json:"amount,omitempty"`
}

// Refund reverses a charged transaction, fully or partially. Used as the
// compensating action when a ledger step fails after the gateway succeeded.
func (p *PaystackProvider) Refund(ctx context.Context, req RefundRequest) error {
	if req.Reference == "" {
		return validationErr("reference required")
	}
	payload := paystackRefundReq{Transaction: req.Reference, Amount: req.AmountMinor}
	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	if err := p.post(ctx, "/refund", payload, &out); err != nil {
		return err
	}
	if !out.Status {
		return gatewayErr(out.Message, nil)
	}
	log.Printf("[PAYSTACK] refund issued reference=%s amount=%d", req.Reference, req.AmountMinor)
	return nil
}

func (p *PaystackProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return networkErr("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.Secret)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return networkErr("gateway unreachable", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[PAYSTACK] %s status=%d body=%s", path, resp.StatusCode, string(respBody))
		return gatewayErr(fmt.Sprintf("%s: %d", path, resp.StatusCode), nil)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return gatewayErr("bad response body", err)
	}
	return nil
}
