package domain

import "time"

// NotificationType identifies what happened to the application a
// notification refers to.
type NotificationType string

const (
	NotificationApplicationReceived  NotificationType = "application.received"
	NotificationApplicationAccepted  NotificationType = "application.accepted"
	NotificationApplicationRejected  NotificationType = "application.rejected"
	NotificationApplicationWithdrawn NotificationType = "application.withdrawn"
)

// Notification is a per-user inbox entry produced by application lifecycle
// events. Delivery to external channels happens asynchronously; this record
// is the durable copy.
type Notification struct {
	ID             string           `json:"-" bson:"_id,omitempty"`
	Ref            string           `json:"ref" bson:"ref"`
	RecipientID    int64            `json:"recipient_id" bson:"recipient_id"`
	Type           NotificationType `json:"type" bson:"type"`
	ApplicationRef string           `json:"application_ref" bson:"application_ref"`
	ShiftRef       string           `json:"shift_ref" bson:"shift_ref"`
	Message        string           `json:"message" bson:"message"`
	Read           bool             `json:"read" bson:"read"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
}
