package enums

import "fmt"

// OfferItemType identifies the kind of listing an offer targets.
type OfferItemType string

const (
	OfferItemTypeProduct OfferItemType = "product"
	OfferItemTypeAd      OfferItemType = "ad"
)

var validOfferItemTypes = []OfferItemType{
	OfferItemTypeProduct,
	OfferItemTypeAd,
}

// String implements fmt.Stringer.
func (o OfferItemType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OfferItemType.
func (o OfferItemType) IsValid() bool {
	for _, candidate := range validOfferItemTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOfferItemType converts raw input into an OfferItemType.
func ParseOfferItemType(value string) (OfferItemType, error) {
	for _, candidate := range validOfferItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer item type %q", value)
}

// OfferStatus tracks the buyer-side lifecycle of an offer.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusCancelled OfferStatus = "cancelled"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusPending,
	OfferStatusAccepted,
	OfferStatusCancelled,
}

// String implements fmt.Stringer.
func (o OfferStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OfferStatus.
func (o OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}

// VendorDecision records how a vendor responded to an item's offer flow.
type VendorDecision string

const (
	VendorDecisionAccepted VendorDecision = "accepted"
	VendorDecisionRejected VendorDecision = "rejected"
)

var validVendorDecisions = []VendorDecision{
	VendorDecisionAccepted,
	VendorDecisionRejected,
}

// String implements fmt.Stringer.
func (v VendorDecision) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorDecision.
func (v VendorDecision) IsValid() bool {
	for _, candidate := range validVendorDecisions {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorDecision converts raw input into a VendorDecision.
func ParseVendorDecision(value string) (VendorDecision, error) {
	for _, candidate := range validVendorDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor decision %q", value)
}
