package enums

import "fmt"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeOfferAccepted     NotificationType = "offer_accepted"
	NotificationTypeOfferRejected     NotificationType = "offer_rejected"
	NotificationTypeOrderPlaced       NotificationType = "order_placed"
	NotificationTypePaymentCaptured   NotificationType = "payment_captured"
	NotificationTypePaymentFailed     NotificationType = "payment_failed"
	NotificationTypePaymentRefunded   NotificationType = "payment_refunded"
	NotificationTypeFulfillmentUpdate NotificationType = "fulfillment_update"
	NotificationTypeChatMessage       NotificationType = "chat_message"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOfferAccepted,
	NotificationTypeOfferRejected,
	NotificationTypeOrderPlaced,
	NotificationTypePaymentCaptured,
	NotificationTypePaymentFailed,
	NotificationTypePaymentRefunded,
	NotificationTypeFulfillmentUpdate,
	NotificationTypeChatMessage,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
