package enums

import "fmt"

// NotificationType classifies an in-app notification.
type NotificationType string

const (
	NotificationTypeDispute             NotificationType = "dispute"
	NotificationTypeReview              NotificationType = "review"
	NotificationTypeNewMessage          NotificationType = "new-message"
	NotificationTypeAppointmentReminder NotificationType = "appointment-reminder"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeDispute,
	NotificationTypeReview,
	NotificationTypeNewMessage,
	NotificationTypeAppointmentReminder,
}

func (n NotificationType) String() string {
	return string(n)
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
