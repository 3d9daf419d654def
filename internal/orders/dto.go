package orders

import (
	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

// Actor is the authenticated identity driving an order operation.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.Role
	VendorID *uuid.UUID
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// CheckoutInput is the buyer's request to convert an offer into an order.
// Price fields are deliberately absent: all amounts come from the stored offer.
type CheckoutInput struct {
	OfferID      uuid.UUID
	Quantity     int
	DeliveryType enums.DeliveryType
	Address      types.Address
}

// VerifyPaymentInput carries the gateway callback triple.
type VerifyPaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// VerifyPaymentResult reports the callback outcome. Verified false means the
// signature did not match; the caller maps that to a non-success response.
type VerifyPaymentResult struct {
	Order           *models.Order `json:"order"`
	Verified        bool          `json:"verified"`
	AlreadyCaptured bool          `json:"already_captured"`
}

// ListInput paginates a buyer's or vendor's orders.
type ListInput struct {
	PaymentStatus *enums.PaymentStatus
	Pagination    pagination.Params
}

// AdminListInput paginates the admin order console.
type AdminListInput struct {
	PaymentStatus     *enums.PaymentStatus
	FulfillmentStatus *enums.FulfillmentStatus
	BuyerID           *uuid.UUID
	VendorID          *uuid.UUID
	Pagination        pagination.Params
}

// ListResult wraps one page of orders.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}
