package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/enums"
)

// Product is a buyer-owned catalog entry that ads and offers reference.
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID      `gorm:"column:owner_user_id;type:uuid;not null;index"`
	SKU         string         `gorm:"column:sku;type:text;not null"`
	Name        string         `gorm:"type:text;not null"`
	Description *string        `gorm:"type:text"`
	Category    enums.Category `gorm:"column:category;type:text;not null;default:'other'"`
	ImageURL    *string        `gorm:"column:image_url"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
