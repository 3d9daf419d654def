package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/enums"
)

// VendorDecisionRecord pins a vendor's accept/reject outcome for an item.
// The unique index makes the decision write-once, which is what closes the
// duplicate-accept race under concurrent requests.
type VendorDecisionRecord struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID  uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:ux_vendor_decisions_vendor_item"`
	ItemType  enums.OfferItemType  `gorm:"column:item_type;type:text;not null;uniqueIndex:ux_vendor_decisions_vendor_item"`
	ItemID    uuid.UUID            `gorm:"column:item_id;type:uuid;not null;uniqueIndex:ux_vendor_decisions_vendor_item"`
	Decision  enums.VendorDecision `gorm:"column:decision;type:text;not null"`
	OfferID   *uuid.UUID           `gorm:"column:offer_id;type:uuid"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (VendorDecisionRecord) TableName() string {
	return "vendor_decisions"
}
