package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/pkg/enums"
)

// Offer is a vendor's bid on a listing with the negotiated terms frozen in.
// At most one row may exist per vendor/item pair, enforced by the composite
// unique index. A withdrawn bid is removed outright together with its
// decision row; rejections live only in vendor_decisions.
type Offer struct {
	ID                    uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemType              enums.OfferItemType `gorm:"column:item_type;type:text;not null;uniqueIndex:ux_offers_item_vendor"`
	ItemID                uuid.UUID           `gorm:"column:item_id;type:uuid;not null;uniqueIndex:ux_offers_item_vendor"`
	VendorID              uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:ux_offers_item_vendor"`
	OwnerUserID           uuid.UUID           `gorm:"column:owner_user_id;type:uuid;not null;index"`
	PricePerProduct       decimal.Decimal     `gorm:"column:price_per_product;type:numeric(14,2);not null"`
	DispatchDay           int                 `gorm:"column:dispatch_day;not null"`
	Remark                *string             `gorm:"type:text"`
	Material              *string             `gorm:"type:text"`
	Description           *string             `gorm:"type:text"`
	StandardDeliveryPrice decimal.Decimal     `gorm:"column:standard_delivery_price;type:numeric(14,2);not null"`
	ExpediteDeliveryPrice decimal.Decimal     `gorm:"column:expedite_delivery_price;type:numeric(14,2);not null"`
	Status                enums.OfferStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	DecidedAt             *time.Time          `gorm:"column:decided_at"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
