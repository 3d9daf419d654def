package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/internal/notifications"
	"github.com/skumawat/bidkart-backend/pkg/db"
	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/metrics"
	"github.com/skumawat/bidkart-backend/pkg/outbox"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
	"github.com/skumawat/bidkart-backend/pkg/paygate"
	"github.com/skumawat/bidkart-backend/pkg/redis"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

// notifier is the slice of the notification service orders needs.
type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

// Service owns the order lifecycle from checkout to refund.
type Service interface {
	Checkout(ctx context.Context, actor Actor, input CheckoutInput) (*models.Order, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*VerifyPaymentResult, error)
	UpdateFulfillment(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.FulfillmentStatus) (*models.Order, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	Refund(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)

	GetByGatewayOrderID(ctx context.Context, actor Actor, gatewayOrderID string) (*models.Order, error)
	ListForBuyer(ctx context.Context, actor Actor, input ListInput) (*ListResult, error)
	ListForVendor(ctx context.Context, actor Actor, input ListInput) (*ListResult, error)
	AdminList(ctx context.Context, actor Actor, input AdminListInput) (*ListResult, error)
	AdminSearch(ctx context.Context, actor Actor, gatewayOrderID string) ([]models.Order, error)
}

type service struct {
	repo        Repository
	dbClient    *db.Client
	gateway     paygate.Gateway
	outbox      *outbox.Service
	notifier    notifier
	idempotency redis.IdempotencyStore
	payMetrics  *metrics.PaymentMetrics
	logg        *logger.Logger
}

// vendorVisibleStatuses is what a vendor sees of their order book: only paid
// orders and their refunds, never abandoned checkouts.
var vendorVisibleStatuses = []enums.PaymentStatus{
	enums.PaymentStatusCaptured,
	enums.PaymentStatusRefunded,
}

const captureIdempotencyTTL = 24 * time.Hour

// NewService wires the order lifecycle dependencies. The idempotency store is
// optional; without it, duplicate-callback suppression rests on the
// conditional capture UPDATE alone.
func NewService(
	repo Repository,
	dbClient *db.Client,
	gateway paygate.Gateway,
	outboxSvc *outbox.Service,
	notifier notifier,
	idempotency redis.IdempotencyStore,
	payMetrics *metrics.PaymentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders logger required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		gateway:     gateway,
		outbox:      outboxSvc,
		notifier:    notifier,
		idempotency: idempotency,
		payMetrics:  payMetrics,
		logg:        logg,
	}, nil
}

// Checkout converts the buyer's chosen offer into a pending order backed by a
// gateway order. Every amount is recomputed from the stored offer; the client
// never supplies a price.
func (s *service) Checkout(ctx context.Context, actor Actor, input CheckoutInput) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.OfferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.DeliveryType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery type")
	}

	offer, err := s.repo.FindOfferByID(ctx, input.OfferID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	if offer.OwnerUserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another buyer")
	}
	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("offer in status %s cannot be checked out", offer.Status))
	}

	snapshot, adID, err := s.resolveItem(ctx, offer)
	if err != nil {
		return nil, err
	}

	totalProducts := offer.PricePerProduct.Mul(decimal.NewFromInt(int64(input.Quantity)))
	deliveryCharges := offer.StandardDeliveryPrice
	if input.DeliveryType == enums.DeliveryTypeExpedite {
		deliveryCharges = offer.ExpediteDeliveryPrice
	}
	totalAmount := totalProducts.Add(deliveryCharges)
	amountMinor := totalAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	input.Address.Normalize()
	receipt := fmt.Sprintf("rcpt_%s", uuid.NewString())

	gatewayOrder, err := s.gateway.CreateOrder(ctx, paygate.CreateOrderParams{
		AmountMinor: amountMinor,
		Currency:    "INR",
		Receipt:     receipt,
	})
	if err != nil {
		return nil, err
	}

	gatewayCreated := gatewayOrder.CreatedTime()
	if gatewayCreated.IsZero() {
		gatewayCreated = time.Now().UTC()
	}
	order := &models.Order{
		ID:                 uuid.New(),
		BuyerID:            actor.UserID,
		VendorID:           offer.VendorID,
		ItemType:           offer.ItemType,
		ItemID:             offer.ItemID,
		AdID:               adID,
		OfferID:            offer.ID,
		Snapshot:           *snapshot,
		Quantity:           input.Quantity,
		PricePerProduct:    offer.PricePerProduct,
		TotalProductsPrice: totalProducts,
		DeliveryType:       input.DeliveryType,
		DeliveryCharges:    deliveryCharges,
		TotalAmount:        totalAmount,
		Currency:           gatewayOrder.Currency,
		ShippingAddress:    input.Address,
		PaymentStatus:      enums.PaymentStatusPending,
		FulfillmentStatus:  enums.FulfillmentStatusNotProcessed,
		GatewayOrderID:     &gatewayOrder.ID,
		Receipt:            receipt,
		AmountDueMinor:     gatewayOrder.AmountMinor,
		AmountPaidMinor:    gatewayOrder.AmountPaidMinor,
		Attempts:           gatewayOrder.Attempts,
		GatewayCreatedAt:   &gatewayCreated,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"gatewayOrderId": gatewayOrder.ID,
				"totalAmount":    totalAmount.String(),
				"amountDueMinor": gatewayOrder.AmountMinor,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(logCtx, "order created")
	return order, nil
}

func (s *service) resolveItem(ctx context.Context, offer *models.Offer) (*types.ItemSnapshot, *uuid.UUID, error) {
	switch offer.ItemType {
	case enums.OfferItemTypeAd:
		ad, err := s.repo.FindAd(ctx, offer.ItemID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ad")
		}
		if ad == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
		}
		if !ad.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ad is no longer active")
		}
		product, err := s.repo.FindProduct(ctx, ad.ProductID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		adID := ad.ID
		return snapshotOf(product), &adID, nil
	case enums.OfferItemTypeProduct:
		product, err := s.repo.FindProduct(ctx, offer.ItemID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !product.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is no longer active")
		}
		return snapshotOf(product), nil, nil
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item type on offer")
}

func snapshotOf(product *models.Product) *types.ItemSnapshot {
	return &types.ItemSnapshot{
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Category:  product.Category.String(),
		ImageURL:  product.ImageURL,
	}
}

// VerifyPayment handles the gateway callback. A valid signature captures the
// payment exactly once; an invalid one marks the payment failed through the
// same conditional-UPDATE discipline. Replays of a settled callback return
// success without re-notifying anyone.
func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*VerifyPaymentResult, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.GatewaySignature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature required")
	}

	order, err := s.repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	verified := s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature)
	if !verified {
		return s.handleFailedVerification(ctx, order, input)
	}

	if order.PaymentStatus == enums.PaymentStatusCaptured {
		return &VerifyPaymentResult{Order: order, Verified: true, AlreadyCaptured: true}, nil
	}

	now := time.Now().UTC()
	var captured bool
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		captured, err = txRepo.CapturePayment(ctx, input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature, now)
		if err != nil {
			return err
		}
		if !captured {
			return nil
		}

		if _, err := txRepo.MarkOfferAccepted(ctx, order.OfferID, now); err != nil {
			return err
		}
		if order.AdID != nil {
			if _, err := txRepo.CloseAd(ctx, *order.AdID, order.OfferID, now); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentCaptured,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: map[string]any{
				"gatewayOrderId":   input.GatewayOrderID,
				"gatewayPaymentId": input.GatewayPaymentID,
				"amountPaidMinor":  order.AmountDueMinor,
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmationEmails,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: map[string]any{
				"gatewayOrderId": input.GatewayOrderID,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "capture payment")
	}

	refreshed, err := s.repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}

	if !captured {
		// Lost the race to a concurrent replica. The winner notified.
		return &VerifyPaymentResult{Order: refreshed, Verified: true, AlreadyCaptured: true}, nil
	}

	s.payMetrics.IncCaptured()
	if s.acquireCaptureSlot(ctx, input.GatewayOrderID) {
		s.notifyCapture(ctx, refreshed)
	}
	return &VerifyPaymentResult{Order: refreshed, Verified: true}, nil
}

func (s *service) handleFailedVerification(ctx context.Context, order *models.Order, input VerifyPaymentInput) (*VerifyPaymentResult, error) {
	now := time.Now().UTC()
	var failed bool
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		failed, err = txRepo.MarkPaymentFailed(ctx, input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature, now)
		if err != nil {
			return err
		}
		if !failed {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: map[string]any{
				"gatewayOrderId": input.GatewayOrderID,
				"reason":         "signature mismatch",
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}

	if failed {
		s.payMetrics.IncFailed()
		s.notify(ctx, order.BuyerID, notifications.NotifyInput{
			UserID:  order.BuyerID,
			Type:    enums.NotificationTypePaymentFailed,
			Title:   "Payment failed",
			Message: "We could not verify your payment. Please try again.",
		})
	}

	refreshed, err := s.repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return &VerifyPaymentResult{Order: refreshed, Verified: false}, nil
}

// acquireCaptureSlot suppresses duplicate capture notifications across
// replicas. The conditional UPDATE is the source of truth; redis only keeps a
// replayed callback from racing the winner's notification fan-out.
func (s *service) acquireCaptureSlot(ctx context.Context, gatewayOrderID string) bool {
	if s.idempotency == nil {
		return true
	}
	key := s.idempotency.IdempotencyKey("capture", gatewayOrderID)
	acquired, err := s.idempotency.SetNX(ctx, key, "1", captureIdempotencyTTL)
	if err != nil {
		s.logg.Warn(ctx, "capture idempotency check failed, notifying anyway")
		return true
	}
	return acquired
}

func (s *service) notifyCapture(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	s.notify(ctx, order.BuyerID, notifications.NotifyInput{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypePaymentCaptured,
		Title:   "Payment received",
		Message: fmt.Sprintf("Your payment of %s %s was captured", order.Currency, order.TotalAmount.StringFixed(2)),
	})

	vendorOwner, err := s.repo.FindVendorOwner(ctx, order.VendorID)
	if err != nil || vendorOwner == uuid.Nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Warn(logCtx, "vendor owner lookup failed, skipping vendor notification")
		return
	}
	s.notify(ctx, vendorOwner, notifications.NotifyInput{
		UserID:  vendorOwner,
		Type:    enums.NotificationTypeOrderPlaced,
		Title:   "New order",
		Message: fmt.Sprintf("You received a paid order for %s", order.Snapshot.Name),
	})
}

// UpdateFulfillment moves the order along the fulfillment table. Only the
// order's vendor or an admin may drive it.
func (s *service) UpdateFulfillment(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.FulfillmentStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := s.authorizeFulfillment(actor, order); err != nil {
		return nil, err
	}

	if order.FulfillmentStatus == enums.FulfillmentStatusCancelled && target == enums.FulfillmentStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already cancelled")
	}
	if !CanTransitionFulfillment(order.FulfillmentStatus, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("fulfillment transition %s -> %s not allowed", order.FulfillmentStatus, target))
	}

	now := time.Now().UTC()
	var changed bool
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		changed, err = txRepo.UpdateFulfillment(ctx, orderID, order.FulfillmentStatus, target, now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		eventType := enums.EventOrderFulfillmentChanged
		if target == enums.FulfillmentStatusCancelled {
			eventType = enums.EventOrderCancelled
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, VendorID: actor.VendorID, Role: actor.Role.String()},
			Data: map[string]any{
				"from": order.FulfillmentStatus.String(),
				"to":   target.String(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment")
	}
	if !changed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
	}

	s.notify(ctx, order.BuyerID, notifications.NotifyInput{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypeFulfillmentUpdate,
		Title:   "Order update",
		Message: fmt.Sprintf("Your order for %s is now %s", order.Snapshot.Name, target),
	})

	return s.repo.FindByID(ctx, orderID)
}

func (s *service) authorizeFulfillment(actor Actor, order *models.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == enums.RoleMerchant && actor.VendorID != nil && *actor.VendorID == order.VendorID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "only the order's vendor or an admin may update fulfillment")
}

// Cancel is the cancellation entry point used by the dedicated cancel route.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	return s.UpdateFulfillment(ctx, actor, orderID, enums.FulfillmentStatusCancelled)
}

// Refund issues a gateway refund for a captured payment on a cancelled order.
// Admin only; both conditions are required.
func (s *service) Refund(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "refunds are admin-only")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !CanRefund(order.PaymentStatus, order.FulfillmentStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden,
			"refund requires a captured payment on a cancelled order")
	}
	if order.GatewayPaymentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no captured payment id")
	}

	refund, err := s.gateway.Refund(ctx, paygate.RefundParams{
		PaymentID:   *order.GatewayPaymentID,
		AmountMinor: order.AmountPaidMinor,
		Receipt:     order.Receipt,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var changed bool
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		changed, err = txRepo.MarkRefunded(ctx, orderID, refund.ID, now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRefunded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"refundId":          refund.ID,
				"amountRefundMinor": order.AmountPaidMinor,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark refunded")
	}
	if !changed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order was refunded concurrently")
	}

	s.payMetrics.IncRefunded()
	s.notify(ctx, order.BuyerID, notifications.NotifyInput{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypePaymentRefunded,
		Title:   "Refund issued",
		Message: fmt.Sprintf("Your payment of %s %s was refunded", order.Currency, order.TotalAmount.StringFixed(2)),
	})

	return s.repo.FindByID(ctx, orderID)
}

func (s *service) GetByGatewayOrderID(ctx context.Context, actor Actor, gatewayOrderID string) (*models.Order, error) {
	if gatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id required")
	}

	order, err := s.repo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if actor.IsAdmin() || order.BuyerID == actor.UserID ||
		(actor.VendorID != nil && *actor.VendorID == order.VendorID) {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
}

func (s *service) ListForBuyer(ctx context.Context, actor Actor, input ListInput) (*ListResult, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	orders, next, err := s.repo.ListByBuyer(ctx, actor.UserID, listOrdersParams{
		PaymentStatus: input.PaymentStatus,
		Limit:         input.Pagination.Limit,
		Cursor:        cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Items: orders, Cursor: encodeCursor(next)}, nil
}

func (s *service) ListForVendor(ctx context.Context, actor Actor, input ListInput) (*ListResult, error) {
	if actor.VendorID == nil || *actor.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor identity required")
	}

	statuses := vendorVisibleStatuses
	if input.PaymentStatus != nil {
		allowed := false
		for _, status := range vendorVisibleStatuses {
			if status == *input.PaymentStatus {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				"vendors may filter by captured or refunded only")
		}
		statuses = []enums.PaymentStatus{*input.PaymentStatus}
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	orders, next, err := s.repo.ListByVendor(ctx, *actor.VendorID, statuses, listOrdersParams{
		Limit:  input.Pagination.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	return &ListResult{Items: orders, Cursor: encodeCursor(next)}, nil
}

func (s *service) AdminList(ctx context.Context, actor Actor, input AdminListInput) (*ListResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	orders, next, err := s.repo.AdminList(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Items: orders, Cursor: encodeCursor(next)}, nil
}

func (s *service) AdminSearch(ctx context.Context, actor Actor, gatewayOrderID string) ([]models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if gatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term required")
	}

	orders, err := s.repo.SearchByGatewayOrderID(ctx, gatewayOrderID, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search orders")
	}
	return orders, nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, input notifications.NotifyInput) {
	if _, err := s.notifier.Notify(ctx, input); err != nil {
		logCtx := s.logg.WithUserID(ctx, userID.String())
		s.logg.Error(logCtx, "order notification failed", err)
	}
}

func encodeCursor(next *pagination.Cursor) string {
	if next == nil {
		return ""
	}
	return pagination.EncodeCursor(*next)
}
