package payment

import (
	"context"
	"fmt"
)

// InitRequest describes one gateway initialization. AmountMinor is the charge
// in minor units; the payer contact depends on the method (Email for card,
// Phone for STK push). Reference must be generated before the call so retries
// stay identifiable.
type InitRequest struct {
	UserID      uint
	AmountMinor int64
	Currency    string
	Email       string
	Phone       string
	Description string
	Reference   string
	CallbackURL string
}

// InitResult is what the caller needs to continue the flow. AuthorizationURL
// and AccessCode are set for redirect-style gateways; STK-style gateways only
// return the reference.
type InitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// RefundRequest reverses a charge. Phone is required by transfer-style
// gateways that push the refund back to the payer.
type RefundRequest struct {
	Reference   string
	AmountMinor int64
	Phone       string
}

// Provider is a payment gateway. Refund exists because the ledger and the
// gateway are not covered by one transaction: when a persistence step fails
// after a successful gateway call, the caller rolls back financially with a
// compensating refund.
type Provider interface {
	Initialize(ctx context.Context, req InitRequest) (*InitResult, error)
	Verify(ctx context.Context, reference string) (bool, error)
	Refund(ctx context.Context, req RefundRequest) error
}

// Stage identifies where an initialization attempt failed.
type Stage string

const (
	StageValidation Stage = "validation"
	StageNetwork    Stage = "network"
	StageGateway    Stage = "gateway"
)

// Error is a typed gateway failure. Callers branch on Stage: validation errors
// are not retryable, network and gateway errors surface a retry affordance.
type Error struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment %s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("payment %s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationErr(msg string) *Error {
	return &Error{Stage: StageValidation, Message: msg}
}

func networkErr(msg string, err error) *Error {
	return &Error{Stage: StageNetwork, Message: msg, Err: err}
}

func gatewayErr(msg string, err error) *Error {
	return &Error{Stage: StageGateway, Message: msg, Err: err}
}
