package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/types"
)

// Vendor is a merchant storefront owned by a user account. The historical
// accepted/rejected item id sets live in vendor_decisions rows, not here.
type Vendor struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID     uuid.UUID      `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	Name            string         `gorm:"type:text;not null"`
	Description     *string        `gorm:"type:text"`
	Phone           *string        `gorm:"column:phone"`
	Rating          float64        `gorm:"column:rating;not null;default:0"`
	MerchantAddress *types.Address `gorm:"column:merchant_address;type:jsonb;serializer:json"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
