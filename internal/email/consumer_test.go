package email

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/outbox"
	"github.com/skumawat/bidkart-backend/pkg/outbox/idempotency"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

type stubRepo struct {
	order   *models.Order
	users   map[uuid.UUID]*models.User
	ownerID uuid.UUID
	findErr error
}

func (s *stubRepo) FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	return s.order, s.findErr
}

func (s *stubRepo) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users[userID], nil
}

func (s *stubRepo) FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error) {
	return s.ownerID, nil
}

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type memoryStore struct {
	keys map[string]bool
}

func (m *memoryStore) Get(context.Context, string) (string, error) { return "", nil }

func (m *memoryStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "bk:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func buildMessage(t *testing.T, eventType enums.OutboxEventType, eventID uuid.UUID, gatewayOrderID string) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(map[string]string{"gatewayOrderId": gatewayOrderID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		Attributes: map[string]string{"event_type": string(eventType)},
		Data:       envelope,
	}
}

func newConsumerEnv(t *testing.T, repo *stubRepo, sender *recordingSender) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(&memoryStore{}, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "email-test"})
	consumer, err := NewConsumer(repo, sender, &pubsub.Subscriber{}, manager, logg)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return consumer
}

func seedRepo() *stubRepo {
	buyerID := uuid.New()
	ownerID := uuid.New()
	gatewayOrderID := "order_abc12345"
	return &stubRepo{
		order: &models.Order{
			ID:             uuid.New(),
			BuyerID:        buyerID,
			VendorID:       uuid.New(),
			Quantity:       2,
			TotalAmount:    decimal.NewFromInt(1050),
			Currency:       "INR",
			Snapshot:       types.ItemSnapshot{Name: "Steel Bolt"},
			GatewayOrderID: &gatewayOrderID,
		},
		users: map[uuid.UUID]*models.User{
			buyerID: {ID: buyerID, Email: "buyer@example.com", FirstName: "Asha"},
			ownerID: {ID: ownerID, Email: "vendor@example.com", FirstName: "Ravi"},
		},
		ownerID: ownerID,
	}
}

func TestConsumerSendsBuyerAndVendorEmails(t *testing.T) {
	t.Parallel()

	repo := seedRepo()
	sender := &recordingSender{}
	consumer := newConsumerEnv(t, repo, sender)

	msg := buildMessage(t, enums.EventOrderConfirmationEmails, uuid.New(), *repo.order.GatewayOrderID)
	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack result, got %+v", result)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "buyer@example.com" || sender.sent[1].To != "vendor@example.com" {
		t.Fatalf("unexpected recipients: %+v", sender.sent)
	}
}

func TestConsumerSkipsForeignEvents(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	consumer := newConsumerEnv(t, seedRepo(), sender)

	msg := buildMessage(t, enums.EventOrderCreated, uuid.New(), "order_abc12345")
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatal("foreign events are acked without work")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no emails expected, got %d", len(sender.sent))
	}
}

func TestConsumerIsIdempotentPerEvent(t *testing.T) {
	t.Parallel()

	repo := seedRepo()
	sender := &recordingSender{}
	consumer := newConsumerEnv(t, repo, sender)

	eventID := uuid.New()
	msg := buildMessage(t, enums.EventOrderConfirmationEmails, eventID, *repo.order.GatewayOrderID)
	consumer.process(context.Background(), msg)
	redelivery := buildMessage(t, enums.EventOrderConfirmationEmails, eventID, *repo.order.GatewayOrderID)
	result := consumer.process(context.Background(), redelivery)
	if !result.ack {
		t.Fatal("redelivery should ack")
	}
	if len(sender.sent) != 2 {
		t.Fatalf("redelivery must not resend, got %d emails", len(sender.sent))
	}
}

func TestConsumerNacksOnSenderFailure(t *testing.T) {
	t.Parallel()

	repo := seedRepo()
	sender := &recordingSender{err: errors.New("smtp down")}
	consumer := newConsumerEnv(t, repo, sender)

	msg := buildMessage(t, enums.EventOrderConfirmationEmails, uuid.New(), *repo.order.GatewayOrderID)
	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatal("sender failure should nack for retry")
	}
}

func TestConsumerAcksWhenOrderMissing(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{users: map[uuid.UUID]*models.User{}}
	sender := &recordingSender{}
	consumer := newConsumerEnv(t, repo, sender)

	msg := buildMessage(t, enums.EventOrderConfirmationEmails, uuid.New(), "order_missing")
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatal("missing order is a terminal condition, ack it")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no emails expected, got %d", len(sender.sent))
	}
}
