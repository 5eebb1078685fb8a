package model

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// Notification is a per-recipient message produced by a release transition
type Notification struct {
	ID             string
	RecipientID    string
	EventType      types.NotificationEventType
	Details        NotificationDetails
	Link           string
	Read           bool
	ReadAt         *time.Time
	DeliveryStatus types.DeliveryStatus
	CreatedAt      time.Time
}

// NotificationDetails describes the release transition behind a notification
type NotificationDetails struct {
	ReleaseCode    string              `json:"releaseCode"`
	ProductCode    string              `json:"productCode,omitempty"`
	PreviousStatus types.ReleaseStatus `json:"previousStatus"`
	NewStatus      types.ReleaseStatus `json:"newStatus"`
	ActorID        string              `json:"actorId"`
}

// ReleaseLink returns the UI path of a release
func ReleaseLink(code string) string {
	return "/releases/" + code
}

// DeliveryFailure is an audit record of a notification that could not be delivered
type DeliveryFailure struct {
	ID             string
	NotificationID string
	Recipient      string
	EventType      types.NotificationEventType
	ErrorMessage   string
	FailedAt       time.Time
}
