package paygate

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skumawat/bidkart-backend/pkg/config"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "paygate-test"})
	client, err := NewClient(config.PayGateConfig{
		BaseURL:   baseURL,
		KeyID:     "key_test",
		KeySecret: "s3cret",
		Currency:  "INR",
		Timeout:   5 * time.Second,
	}, logg)
	require.NoError(t, err)
	return client
}

func TestCreateOrderSendsBasicAuthAndAmount(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "s3cret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "order_abc123",
			"amount":      gotBody["amount"],
			"amount_paid": 0,
			"currency":    gotBody["currency"],
			"receipt":     gotBody["receipt"],
			"status":      "created",
			"attempts":    1,
			"created_at":  1756380000,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		AmountMinor: 105000,
		Receipt:     "rcpt_1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/orders", gotPath)
	assert.Equal(t, float64(105000), gotBody["amount"])
	assert.Equal(t, "INR", gotBody["currency"])
	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(105000), order.AmountMinor)
	assert.Equal(t, int64(0), order.AmountPaidMinor)
	assert.Equal(t, 1, order.Attempts)
	assert.Equal(t, time.Unix(1756380000, 0).UTC(), order.CreatedTime())
}

func TestCreateOrderMapsClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderParams{AmountMinor: 100})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePayment, typed.Code())
	assert.Contains(t, typed.Message(), "amount exceeds maximum")
}

func TestCreateOrderMapsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderParams{AmountMinor: 100})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestRefundHitsPaymentPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "rfnd_1",
			"payment_id": "pay_1",
			"amount":     105000,
			"status":     "processed",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	refund, err := client.Refund(context.Background(), RefundParams{
		PaymentID:   "pay_1",
		AmountMinor: 105000,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/payments/pay_1/refund", gotPath)
	assert.Equal(t, "rfnd_1", refund.ID)
}

func TestRefundRejectsMissingPaymentID(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")
	_, err := client.Refund(context.Background(), RefundParams{AmountMinor: 100})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "s3cret"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("order_1|pay_1"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifyPaymentSignature(secret, "order_1", "pay_1", valid))
	assert.True(t, VerifyPaymentSignature(secret, "order_1", "pay_1", strings.ToUpper(valid)),
		"hex casing should not matter")
	assert.False(t, VerifyPaymentSignature(secret, "order_1", "pay_1", valid[:len(valid)-1]+"0"))
	assert.False(t, VerifyPaymentSignature(secret, "order_2", "pay_1", valid))
	assert.False(t, VerifyPaymentSignature("other", "order_1", "pay_1", valid))
	assert.False(t, VerifyPaymentSignature(secret, "order_1", "pay_1", ""))
}

func TestStubGatewayRoundTrip(t *testing.T) {
	stub := NewStubGateway("s3cret")

	order, err := stub.CreateOrder(context.Background(), CreateOrderParams{AmountMinor: 500, Currency: "INR"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.ID, "order_"))

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write([]byte(order.ID + "|pay_9"))
	sig := hex.EncodeToString(mac.Sum(nil))
	assert.True(t, stub.VerifySignature(order.ID, "pay_9", sig))
}
