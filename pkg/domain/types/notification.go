package types

// NotificationEventType identifies what triggered a notification
type NotificationEventType string

const (
	NotificationEventReleaseUpdated NotificationEventType = "RELEASE_UPDATED"
)

func (e NotificationEventType) String() string {
	return string(e)
}

// DeliveryStatus tracks out-of-band delivery of a notification
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "PENDING"
	DeliveryStatusSent    DeliveryStatus = "SENT"
	DeliveryStatusFailed  DeliveryStatus = "FAILED"
	// DeliveryStatusSkipped is set when no delivery channel is configured.
	DeliveryStatusSkipped DeliveryStatus = "SKIPPED"
)

func (s DeliveryStatus) String() string {
	return string(s)
}
