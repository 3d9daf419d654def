package types

import "github.com/google/uuid"

// ItemSnapshot freezes the listing details an order was placed against.
// Later edits to the product or ad never leak into settled orders.
type ItemSnapshot struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"image_url,omitempty"`
}
