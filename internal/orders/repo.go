package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the order lifecycle. The
// payment-state mutations are conditional UPDATEs: the WHERE clause carries
// the allowed source states so concurrent callers collapse to one winner.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, statuses []enums.PaymentStatus, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)
	AdminList(ctx context.Context, input AdminListInput) ([]models.Order, *pagination.Cursor, error)
	SearchByGatewayOrderID(ctx context.Context, query string, limit int) ([]models.Order, error)

	CapturePayment(ctx context.Context, gatewayOrderID, paymentID, signature string, now time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, gatewayOrderID, paymentID, signature string, now time.Time) (bool, error)
	UpdateFulfillment(ctx context.Context, orderID uuid.UUID, from, to enums.FulfillmentStatus, now time.Time) (bool, error)
	MarkRefunded(ctx context.Context, orderID uuid.UUID, refundID string, now time.Time) (bool, error)

	FindOfferByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	MarkOfferAccepted(ctx context.Context, offerID uuid.UUID, now time.Time) (bool, error)
	FindAd(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CloseAd(ctx context.Context, adID, acceptedOfferID uuid.UUID, now time.Time) (bool, error)
	FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listOrdersParams struct {
	PaymentStatus *enums.PaymentStatus
	Limit         int
	Cursor        *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
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

func (r *repositoryImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("buyer_id = ?", buyerID)
	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}
	return r.pageOrders(query, params.Limit, params.Cursor)
}

func (r *repositoryImpl) ListByVendor(ctx context.Context, vendorID uuid.UUID, statuses []enums.PaymentStatus, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("vendor_id = ?", vendorID).
		Where("payment_status IN ?", statuses)
	return r.pageOrders(query, params.Limit, params.Cursor)
}

func (r *repositoryImpl) AdminList(ctx context.Context, input AdminListInput) ([]models.Order, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if input.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *input.PaymentStatus)
	}
	if input.FulfillmentStatus != nil {
		query = query.Where("fulfillment_status = ?", *input.FulfillmentStatus)
	}
	if input.BuyerID != nil {
		query = query.Where("buyer_id = ?", *input.BuyerID)
	}
	if input.VendorID != nil {
		query = query.Where("vendor_id = ?", *input.VendorID)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, err
	}
	return r.pageOrders(query, input.Pagination.Limit, cursor)
}

func (r *repositoryImpl) SearchByGatewayOrderID(ctx context.Context, query string, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("gateway_order_id LIKE ?", query+"%").
		Order("created_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&orders).Error
	return orders, err
}

func (r *repositoryImpl) pageOrders(query *gorm.DB, limit int, cursor *pagination.Cursor) ([]models.Order, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&orders).Error; err != nil {
		return nil, nil, err
	}
	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

// CapturePayment flips the order to captured exactly once. Replayed callbacks
// and concurrent replicas see zero rows affected and emit nothing.
func (r *repositoryImpl) CapturePayment(ctx context.Context, gatewayOrderID, paymentID, signature string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ? AND payment_status IN ?", gatewayOrderID, capturableStatuses).
		UpdateColumns(map[string]any{
			"payment_status":     enums.PaymentStatusCaptured,
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
			"amount_paid_minor":  gorm.Expr("amount_due_minor"),
			"attempts":           gorm.Expr("attempts + 1"),
			"captured_at":        now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkPaymentFailed records a failed verification. A captured order never
// matches the WHERE clause, so it is never downgraded.
func (r *repositoryImpl) MarkPaymentFailed(ctx context.Context, gatewayOrderID, paymentID, signature string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ? AND payment_status IN ?", gatewayOrderID, failableStatuses).
		UpdateColumns(map[string]any{
			"payment_status":     enums.PaymentStatusFailed,
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
			"attempts":           gorm.Expr("attempts + 1"),
			"updated_at":         now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) UpdateFulfillment(ctx context.Context, orderID uuid.UUID, from, to enums.FulfillmentStatus, now time.Time) (bool, error) {
	updates := map[string]any{
		"fulfillment_status": to,
		"updated_at":         now,
	}
	switch to {
	case enums.FulfillmentStatusDelivered:
		updates["delivered_at"] = now
	case enums.FulfillmentStatusCancelled:
		updates["cancelled_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND fulfillment_status = ?", orderID, from).
		UpdateColumns(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkRefunded(ctx context.Context, orderID uuid.UUID, refundID string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ? AND fulfillment_status = ?",
			orderID, enums.PaymentStatusCaptured, enums.FulfillmentStatusCancelled).
		UpdateColumns(map[string]any{
			"payment_status": enums.PaymentStatusRefunded,
			"refund_id":      refundID,
			"refunded_at":    now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindOfferByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) MarkOfferAccepted(ctx context.Context, offerID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusPending).
		UpdateColumns(map[string]any{
			"status":     enums.OfferStatusAccepted,
			"decided_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindAd(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	var ad models.Ad
	err := r.db.WithContext(ctx).First(&ad, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *repositoryImpl) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CloseAd retires the sourcing ad once its order is paid and pins the winning
// offer on it.
func (r *repositoryImpl) CloseAd(ctx context.Context, adID, acceptedOfferID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Ad{}).
		Where("id = ? AND is_active = ?", adID, true).
		UpdateColumns(map[string]any{
			"is_active":         false,
			"accepted_offer_id": acceptedOfferID,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).Select("id", "owner_user_id").First(&vendor, "id = ?", vendorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return vendor.OwnerUserID, nil
}
