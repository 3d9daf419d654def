package enums

import "fmt"

// FulfillmentStatus tracks fulfillment progress for an order.
// Values keep the legacy wire spelling that mobile clients depend on.
type FulfillmentStatus string

const (
	FulfillmentStatusNotProcessed FulfillmentStatus = "Not_processed"
	FulfillmentStatusProcessing   FulfillmentStatus = "Processing"
	FulfillmentStatusShipped      FulfillmentStatus = "Shipped"
	FulfillmentStatusDelivered    FulfillmentStatus = "Delivered"
	FulfillmentStatusCancelled    FulfillmentStatus = "Cancelled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusNotProcessed,
	FulfillmentStatusProcessing,
	FulfillmentStatusShipped,
	FulfillmentStatusDelivered,
	FulfillmentStatusCancelled,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further fulfillment transitions are allowed.
func (f FulfillmentStatus) IsTerminal() bool {
	return f == FulfillmentStatusDelivered || f == FulfillmentStatusCancelled
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
