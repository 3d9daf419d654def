package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column on outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder        OutboxAggregateType = "order"
	AggregateOffer        OutboxAggregateType = "offer"
	AggregateChat         OutboxAggregateType = "chat"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOffer,
	AggregateChat,
	AggregateNotification,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column on outbox_events.
type OutboxEventType string

const (
	EventOrderCreated            OutboxEventType = "order_created"
	EventPaymentCaptured         OutboxEventType = "payment_captured"
	EventPaymentFailed           OutboxEventType = "payment_failed"
	EventPaymentRefunded         OutboxEventType = "payment_refunded"
	EventOrderFulfillmentChanged OutboxEventType = "order_fulfillment_changed"
	EventOrderCancelled          OutboxEventType = "order_cancelled"
	EventOfferAccepted           OutboxEventType = "offer_accepted"
	EventOfferRejected           OutboxEventType = "offer_rejected"
	EventChatMessageSent         OutboxEventType = "chat_message_sent"
	EventOrderConfirmationEmails OutboxEventType = "order_confirmation_emails"
	EventNotificationRequested   OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventPaymentCaptured,
	EventPaymentFailed,
	EventPaymentRefunded,
	EventOrderFulfillmentChanged,
	EventOrderCancelled,
	EventOfferAccepted,
	EventOfferRejected,
	EventChatMessageSent,
	EventOrderConfirmationEmails,
	EventNotificationRequested,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
