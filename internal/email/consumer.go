package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/outbox"
	"github.com/skumawat/bidkart-backend/pkg/outbox/idempotency"
)

const confirmationConsumer = "order-confirmation-emails"

// Repository is the read-only lookups the email worker needs.
type Repository interface {
	FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the lookups to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "gateway_order_id = ?", gatewayOrderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Select("owner_user_id").First(&vendor, "id = ?", vendorID).Error; err != nil {
		return uuid.Nil, err
	}
	return vendor.OwnerUserID, nil
}

// Consumer watches domain events and sends order confirmation emails to the
// buyer and the winning vendor's owner.
type Consumer struct {
	repo         Repository
	sender       Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds an order confirmation email consumer.
func NewConsumer(repo Repository, sender Sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("email repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("email subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventOrderConfirmationEmails) {
		c.logg.Info(logCtx, "skipping non-email event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, confirmationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload confirmationPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, confirmationConsumer, eventID)
		return processResult{nack: true}
	}

	if err := c.handlePayload(ctx, payload, logCtx); err != nil {
		c.logg.Error(logCtx, "confirmation email handling failed", err)
		_ = c.idempotency.Delete(ctx, confirmationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handlePayload(ctx context.Context, payload confirmationPayload, logCtx context.Context) error {
	if payload.GatewayOrderID == "" {
		return fmt.Errorf("gateway order id missing")
	}

	order, err := c.repo.FindOrderByGatewayOrderID(ctx, payload.GatewayOrderID)
	if err != nil {
		return err
	}
	if order == nil {
		// The row was deleted after the event was emitted. Nothing to mail.
		c.logg.Warn(logCtx, "order not found for confirmation email")
		return nil
	}

	if err := c.mailBuyer(ctx, order); err != nil {
		return err
	}
	if err := c.mailVendor(ctx, order); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithOrderID(logCtx, order.ID.String()), "order confirmation emails sent")
	return nil
}

func (c *Consumer) mailBuyer(ctx context.Context, order *models.Order) error {
	buyer, err := c.repo.FindUser(ctx, order.BuyerID)
	if err != nil {
		return err
	}
	if buyer == nil {
		return fmt.Errorf("buyer %s not found", order.BuyerID)
	}
	return c.sender.Send(ctx, Message{
		To:      buyer.Email,
		Subject: "Your order is confirmed",
		Body: fmt.Sprintf(
			"Hi %s, payment of %s %s for your order was received. We'll let you know when it ships.",
			buyer.FirstName, order.Currency, order.TotalAmount.StringFixed(2),
		),
	})
}

func (c *Consumer) mailVendor(ctx context.Context, order *models.Order) error {
	ownerID, err := c.repo.FindVendorOwner(ctx, order.VendorID)
	if err != nil {
		return err
	}
	owner, err := c.repo.FindUser(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("vendor owner %s not found", ownerID)
	}
	return c.sender.Send(ctx, Message{
		To:      owner.Email,
		Subject: "You received a new order",
		Body: fmt.Sprintf(
			"Hi %s, a buyer paid %s %s for %s (x%d). Please start fulfillment.",
			owner.FirstName, order.Currency, order.TotalAmount.StringFixed(2),
			order.Snapshot.Name, order.Quantity,
		),
	})
}

type confirmationPayload struct {
	GatewayOrderID string `json:"gatewayOrderId"`
}
