package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypePurchaseFulfilled  NotificationType = "purchase_fulfilled"
	NotificationTypePurchaseExpired    NotificationType = "purchase_expired"
	NotificationTypePurchaseCancelled  NotificationType = "purchase_cancelled"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypePurchaseFulfilled,
	NotificationTypePurchaseExpired,
	NotificationTypePurchaseCancelled,
	NotificationTypeSystemAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationTypeForStatus maps a terminal purchase status to the
// notification type delivered to participants.
func NotificationTypeForStatus(status GroupPurchaseStatus) (NotificationType, error) {
	switch status {
	case GroupPurchaseStatusFulfilled:
		return NotificationTypePurchaseFulfilled, nil
	case GroupPurchaseStatusExpired:
		return NotificationTypePurchaseExpired, nil
	case GroupPurchaseStatusCancelled:
		return NotificationTypePurchaseCancelled, nil
	default:
		return "", fmt.Errorf("no notification type for status %q", status)
	}
}
