package listings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description *string
	Category    enums.Category
	ImageURL    *string
}

// CreateAdInput holds the validated payload to post a sourcing ad for a product.
type CreateAdInput struct {
	ProductID       uuid.UUID
	Address         types.Address
	PricePerProduct decimal.Decimal
	Quantity        int
}

// ListProductsInput paginates a buyer's own catalog.
type ListProductsInput struct {
	OwnerUserID uuid.UUID
	Pagination  pagination.Params
}

// ListAdsInput paginates a buyer's own ads.
type ListAdsInput struct {
	OwnerUserID uuid.UUID
	Pagination  pagination.Params
}

// ListOpenInput paginates active listings visible to a bidding vendor. Items
// the vendor already accepted or rejected are excluded.
type ListOpenInput struct {
	VendorID   uuid.UUID
	Category   *enums.Category
	Pagination pagination.Params
}

// ProductListResult wraps one page of products.
type ProductListResult struct {
	Items  []models.Product `json:"items"`
	Cursor string           `json:"cursor"`
}

// AdListResult wraps one page of ads.
type AdListResult struct {
	Items  []models.Ad `json:"items"`
	Cursor string      `json:"cursor"`
}
