package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

// Order captures a checkout between a buyer and a vendor for a single item.
// Price fields are decimal rupees; the *_minor gateway echo fields are paise.
type Order struct {
	ID                 uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID            uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null;index"`
	VendorID           uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null;index"`
	ItemType           enums.OfferItemType     `gorm:"column:item_type;type:text;not null"`
	ItemID             uuid.UUID               `gorm:"column:item_id;type:uuid;not null"`
	AdID               *uuid.UUID              `gorm:"column:ad_id;type:uuid"`
	OfferID            uuid.UUID               `gorm:"column:offer_id;type:uuid;not null"`
	Snapshot           types.ItemSnapshot      `gorm:"column:snapshot;type:jsonb;serializer:json"`
	Quantity           int                     `gorm:"column:quantity;not null"`
	PricePerProduct    decimal.Decimal         `gorm:"column:price_per_product;type:numeric(14,2);not null"`
	TotalProductsPrice decimal.Decimal         `gorm:"column:total_products_price;type:numeric(14,2);not null"`
	DeliveryType       enums.DeliveryType      `gorm:"column:delivery_type;type:text;not null"`
	DeliveryCharges    decimal.Decimal         `gorm:"column:delivery_charges;type:numeric(14,2);not null"`
	TotalAmount        decimal.Decimal         `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Currency           string                  `gorm:"column:currency;type:text;not null;default:'INR'"`
	ShippingAddress    types.Address           `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentStatus      enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	FulfillmentStatus  enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'Not_processed'"`
	GatewayOrderID     *string                 `gorm:"column:gateway_order_id;uniqueIndex"`
	GatewayPaymentID   *string                 `gorm:"column:gateway_payment_id"`
	GatewaySignature   *string                 `gorm:"column:gateway_signature"`
	Receipt            string                  `gorm:"column:receipt;type:text;not null"`
	AmountDueMinor     int64                   `gorm:"column:amount_due_minor;not null;default:0"`
	AmountPaidMinor    int64                   `gorm:"column:amount_paid_minor;not null;default:0"`
	Attempts           int                     `gorm:"column:attempts;not null;default:0"`
	GatewayCreatedAt   *time.Time              `gorm:"column:gateway_created_at"`
	RefundID           *string                 `gorm:"column:refund_id"`
	CapturedAt         *time.Time              `gorm:"column:captured_at"`
	DeliveredAt        *time.Time              `gorm:"column:delivered_at"`
	CancelledAt        *time.Time              `gorm:"column:cancelled_at"`
	RefundedAt         *time.Time              `gorm:"column:refunded_at"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
