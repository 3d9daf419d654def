package orders

import (
	"github.com/skumawat/bidkart-backend/pkg/enums"
)

// fulfillmentTransitions is the authoritative transition table. Anything not
// listed here is disallowed, including self-transitions.
var fulfillmentTransitions = map[enums.FulfillmentStatus][]enums.FulfillmentStatus{
	enums.FulfillmentStatusNotProcessed: {
		enums.FulfillmentStatusProcessing,
		enums.FulfillmentStatusCancelled,
	},
	enums.FulfillmentStatusProcessing: {
		enums.FulfillmentStatusShipped,
		enums.FulfillmentStatusCancelled,
	},
	enums.FulfillmentStatusShipped: {
		enums.FulfillmentStatusDelivered,
		enums.FulfillmentStatusCancelled,
	},
	enums.FulfillmentStatusDelivered: {},
	enums.FulfillmentStatusCancelled: {},
}

// CanTransitionFulfillment reports whether from may move to to.
func CanTransitionFulfillment(from, to enums.FulfillmentStatus) bool {
	for _, allowed := range fulfillmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// capturableStatuses are payment states the conditional capture UPDATE accepts.
// Captured is deliberately absent: a captured order is never re-captured and
// never downgraded.
var capturableStatuses = []enums.PaymentStatus{
	enums.PaymentStatusPending,
	enums.PaymentStatusCreated,
	enums.PaymentStatusAuthorized,
}

// failableStatuses are payment states a verification mismatch may move to Failed.
var failableStatuses = []enums.PaymentStatus{
	enums.PaymentStatusPending,
	enums.PaymentStatusCreated,
	enums.PaymentStatusAuthorized,
}

// CanCapture reports whether a payment in the given state may be captured.
func CanCapture(from enums.PaymentStatus) bool {
	for _, s := range capturableStatuses {
		if s == from {
			return true
		}
	}
	return false
}

// CanFail reports whether a payment in the given state may be marked failed.
func CanFail(from enums.PaymentStatus) bool {
	for _, s := range failableStatuses {
		if s == from {
			return true
		}
	}
	return false
}

// CanRefund reports whether the payment/fulfillment pair qualifies for refund.
func CanRefund(payment enums.PaymentStatus, fulfillment enums.FulfillmentStatus) bool {
	return payment == enums.PaymentStatusCaptured && fulfillment == enums.FulfillmentStatusCancelled
}
