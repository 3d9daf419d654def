package offers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

// ItemRef identifies the listing an offer targets.
type ItemRef struct {
	Type enums.OfferItemType
	ID   uuid.UUID
}

// Actor is the authenticated vendor performing a negotiation operation.
type Actor struct {
	UserID   uuid.UUID
	VendorID uuid.UUID
}

// AcceptInput carries the negotiated terms a vendor bids with.
type AcceptInput struct {
	PricePerProduct       decimal.Decimal
	DispatchDay           int
	Remark                *string
	Material              *string
	Description           *string
	StandardDeliveryPrice decimal.Decimal
	ExpediteDeliveryPrice decimal.Decimal
}

// SortBy selects the offer list ordering key.
type SortBy string

const (
	SortByPrice            SortBy = "price"
	SortByDispatchDay      SortBy = "dispatchDay"
	SortByStandardDelivery SortBy = "standardDelivery"
	SortByExpediteDelivery SortBy = "expediteDelivery"
)

var validSortBys = []SortBy{
	SortByPrice,
	SortByDispatchDay,
	SortByStandardDelivery,
	SortByExpediteDelivery,
}

// ParseSortBy converts raw input into a SortBy, defaulting to price.
func ParseSortBy(value string) (SortBy, error) {
	if value == "" {
		return SortByPrice, nil
	}
	for _, candidate := range validSortBys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder converts raw input into a SortOrder, defaulting to asc.
func ParseSortOrder(value string) (SortOrder, error) {
	switch value {
	case "", string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}

// ListInput configures the buyer-facing offer listing.
type ListInput struct {
	Item      ItemRef
	SortBy    SortBy
	SortOrder SortOrder
	Page      pagination.Page
}

// OfferView is one offer enriched with the bidding vendor's public metadata.
type OfferView struct {
	models.Offer
	VendorName    string         `json:"vendor_name"`
	VendorRating  float64        `json:"vendor_rating"`
	VendorAddress *types.Address `json:"vendor_address,omitempty"`
	VendorPhone   *string        `json:"vendor_phone,omitempty"`
}

// ListResult wraps one sorted page of offers.
type ListResult struct {
	Items []OfferView `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}
