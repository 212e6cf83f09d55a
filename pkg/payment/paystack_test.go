package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReferencePattern(t *testing.T) {
	ref := NewReference("soko", 42)
	assert.Regexp(t, regexp.MustCompile(`^soko_42_\d+_[0-9a-f]{8}$`), ref)
	assert.NotEqual(t, ref, NewReference("soko", 42))
}

func TestPaystackInitialize(t *testing.T) {
	var got paystackInitReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]string{
				"authorization_url": "https://checkout.paystack.com/abc",
				"access_code":       "abc",
				"reference":         got.Reference,
			},
		})
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test")
	res, err := p.Initialize(context.Background(), InitRequest{
		UserID:      7,
		AmountMinor: 15000, // 150.00 KES
		Currency:    "KES",
		Email:       "buyer@example.com",
		Reference:   "soko_7_1700000000_deadbeef",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.Amount)
	assert.Equal(t, "KES", got.Currency)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)
	assert.Equal(t, "soko_7_1700000000_deadbeef", res.Reference)
}

func TestPaystackInitializeValidation(t *testing.T) {
	p := NewPaystackProvider("http://unreachable.invalid", "sk")
	_, err := p.Initialize(context.Background(), InitRequest{AmountMinor: 0, Email: "a@b.c", Reference: "r"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageValidation, perr.Stage)

	_, err = p.Initialize(context.Background(), InitRequest{AmountMinor: 100, Reference: "r"})
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageValidation, perr.Stage)
}

func TestPaystackGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": false, "message": "Invalid key"})
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "bad")
	_, err := p.Initialize(context.Background(), InitRequest{AmountMinor: 100, Email: "a@b.c", Reference: "r", Currency: "KES"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageGateway, perr.Stage)
	assert.Contains(t, perr.Message, "Invalid key")
}

func TestPaystackNetworkError(t *testing.T) {
	p := NewPaystackProvider("http://127.0.0.1:1", "sk")
	_, err := p.Initialize(context.Background(), InitRequest{AmountMinor: 100, Email: "a@b.c", Reference: "r", Currency: "KES"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageNetwork, perr.Stage)
}

func TestPaystackRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/refund", r.URL.Path)
		var body paystackRefundReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "soko_7_1_abcd1234", body.Transaction)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test")
	err := p.Refund(context.Background(), RefundRequest{Reference: "soko_7_1_abcd1234", AmountMinor: 5000})
	require.NoError(t, err)
}
