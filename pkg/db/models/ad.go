package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

// Ad is a buyer's sourcing request for a product. Vendors bid on it through
// offers; the ad is deactivated once its order's payment is captured.
type Ad struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID     uuid.UUID       `gorm:"column:owner_user_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Address         types.Address   `gorm:"column:address;type:jsonb;serializer:json"`
	PricePerProduct decimal.Decimal `gorm:"column:price_per_product;type:numeric(14,2);not null"`
	Quantity        int             `gorm:"column:quantity;not null;default:1"`
	Category        enums.Category  `gorm:"column:category;type:text;not null;default:'other'"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	AcceptedOfferID *uuid.UUID      `gorm:"column:accepted_offer_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
