package payment

import (
	"context"
	"strings"
)

// StubProvider is a no-op provider for development and tests.
type StubProvider struct {
	Refunds []RefundRequest
}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func (s *StubProvider) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	if req.AmountMinor <= 0 {
		return nil, validationErr("amount must be positive")
	}
	return &InitResult{
		AuthorizationURL: "https://checkout.example.test/" + req.Reference,
		AccessCode:       "stub_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (s *StubProvider) Verify(ctx context.Context, reference string) (bool, error) {
	return strings.HasPrefix(reference, "soko_"), nil
}

func (s *StubProvider) Refund(ctx context.Context, req RefundRequest) error {
	s.Refunds = append(s.Refunds, req)
	return nil
}
