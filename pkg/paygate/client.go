package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skumawat/bidkart-backend/pkg/config"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("paygate key id is required")
	errKeySecretRequired = errors.New("paygate key secret is required")
	errLoggerRequired    = errors.New("paygate logger is required")
)

// Gateway is the payment surface consumed by the order service.
type Gateway interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*GatewayOrder, error)
	Refund(ctx context.Context, params RefundParams) (*GatewayRefund, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// CreateOrderParams describes a gateway order to open before collecting payment.
type CreateOrderParams struct {
	AmountMinor int64
	Currency    string
	Receipt     string
}

// RefundParams describes a refund against a captured payment.
type RefundParams struct {
	PaymentID   string
	AmountMinor int64
	Receipt     string
}

// GatewayOrder is the gateway's view of an opened order. CreatedAtUnix is the
// gateway clock in epoch seconds, not ours.
type GatewayOrder struct {
	ID              string `json:"id"`
	AmountMinor     int64  `json:"amount"`
	AmountPaidMinor int64  `json:"amount_paid"`
	Currency        string `json:"currency"`
	Receipt         string `json:"receipt"`
	Status          string `json:"status"`
	Attempts        int    `json:"attempts"`
	CreatedAtUnix   int64  `json:"created_at"`
}

// CreatedTime converts the gateway timestamp, falling back to zero when the
// gateway omitted it.
func (o GatewayOrder) CreatedTime() time.Time {
	if o.CreatedAtUnix <= 0 {
		return time.Time{}
	}
	return time.Unix(o.CreatedAtUnix, 0).UTC()
}

// GatewayRefund is the gateway's view of an issued refund.
type GatewayRefund struct {
	ID          string `json:"id"`
	PaymentID   string `json:"payment_id"`
	AmountMinor int64  `json:"amount"`
	Status      string `json:"status"`
}

// Client talks to the hosted payment gateway over its REST API using
// key-id/key-secret basic auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	currency   string
	logger     *logger.Logger
}

// NewClient validates credentials and builds the gateway client.
func NewClient(cfg config.PayGateConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		currency:   cfg.Currency,
		logger:     logg,
	}, nil
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder opens a gateway order for the given amount in minor units.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*GatewayOrder, error) {
	if params.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order amount must be positive")
	}
	currency := params.Currency
	if currency == "" {
		currency = c.currency
	}

	body := map[string]any{
		"amount":   params.AmountMinor,
		"currency": currency,
		"receipt":  params.Receipt,
	}
	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountMinor,
		"currency": currency,
		"receipt":  params.Receipt,
	})

	var order GatewayOrder
	if err := c.post(ctx, "/v1/orders", body, &order); err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"gateway_order_id": order.ID,
		"status":           order.Status,
	})
	return &order, nil
}

// Refund issues a refund against a captured payment.
func (c *Client) Refund(ctx context.Context, params RefundParams) (*GatewayRefund, error) {
	paymentID := strings.TrimSpace(params.PaymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required for refund")
	}
	if params.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	body := map[string]any{
		"amount":  params.AmountMinor,
		"receipt": params.Receipt,
	}
	c.log(ctx, "request", "refund", map[string]any{
		"payment_id": paymentID,
		"amount":     params.AmountMinor,
	})

	var refund GatewayRefund
	path := fmt.Sprintf("/v1/payments/%s/refund", paymentID)
	if err := c.post(ctx, path, body, &refund); err != nil {
		c.log(ctx, "error", "refund", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "refund", map[string]any{
		"refund_id": refund.ID,
		"status":    refund.Status,
	})
	return &refund, nil
}

// VerifySignature checks the callback signature for a payment against the
// configured key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(c.keySecret, orderID, paymentID, signature)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading gateway response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapGatewayError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding gateway response")
	}
	return nil
}

func (c *Client) mapGatewayError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	message := "payment gateway request failed"
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Description != "" {
		message = payload.Error.Description
	}

	if status >= 500 {
		return pkgerrors.New(pkgerrors.CodeDependency, message).
			WithDetails(map[string]any{"gateway_status": status})
	}
	return pkgerrors.New(pkgerrors.CodePayment, message).
		WithDetails(map[string]any{
			"gateway_status": status,
			"gateway_code":   payload.Error.Code,
		})
}

func (c *Client) log(ctx context.Context, stage, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	entry := map[string]any{"stage": stage, "operation": operation}
	for k, v := range fields {
		entry[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, entry), "paygate "+operation)
}
