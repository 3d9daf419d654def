package paygate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StubGateway is an in-memory Gateway for development and tests. Orders and
// refunds succeed immediately and signatures verify against the stub secret.
type StubGateway struct {
	Secret   string
	mu       sync.Mutex
	orders   map[string]GatewayOrder
	refunds  map[string]GatewayRefund
	failNext error
}

// NewStubGateway builds a stub keyed with the provided signing secret.
func NewStubGateway(secret string) *StubGateway {
	return &StubGateway{
		Secret:  secret,
		orders:  make(map[string]GatewayOrder),
		refunds: make(map[string]GatewayRefund),
	}
}

// FailNext makes the next call return err once.
func (s *StubGateway) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *StubGateway) takeFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.failNext
	s.failNext = nil
	return err
}

// CreateOrder records and returns a fake gateway order.
func (s *StubGateway) CreateOrder(ctx context.Context, params CreateOrderParams) (*GatewayOrder, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	order := GatewayOrder{
		ID:            fmt.Sprintf("order_%s", uuid.NewString()[:8]),
		AmountMinor:   params.AmountMinor,
		Currency:      params.Currency,
		Receipt:       params.Receipt,
		Status:        "created",
		CreatedAtUnix: time.Now().Unix(),
	}
	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()
	return &order, nil
}

// Refund records and returns a fake refund.
func (s *StubGateway) Refund(ctx context.Context, params RefundParams) (*GatewayRefund, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	refund := GatewayRefund{
		ID:          fmt.Sprintf("rfnd_%s", uuid.NewString()[:8]),
		PaymentID:   params.PaymentID,
		AmountMinor: params.AmountMinor,
		Status:      "processed",
	}
	s.mu.Lock()
	s.refunds[refund.ID] = refund
	s.mu.Unlock()
	return &refund, nil
}

// VerifySignature validates against the stub secret.
func (s *StubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(s.Secret, orderID, paymentID, signature)
}

// Orders returns a copy of recorded orders.
func (s *StubGateway) Orders() []GatewayOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GatewayOrder, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out
}

// Refunds returns a copy of recorded refunds.
func (s *StubGateway) Refunds() []GatewayRefund {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GatewayRefund, 0, len(s.refunds))
	for _, r := range s.refunds {
		out = append(out, r)
	}
	return out
}
