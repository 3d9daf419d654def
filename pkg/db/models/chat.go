package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is the single conversation attached to a captured order. One chat per
// order, enforced by the unique index on order_id.
type Chat struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	BuyerID         uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null;index"`
	VendorUserID    uuid.UUID  `gorm:"column:vendor_user_id;type:uuid;not null;index"`
	LatestMessageID *uuid.UUID `gorm:"column:latest_message_id;type:uuid"`
	LatestMessageAt *time.Time `gorm:"column:latest_message_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
