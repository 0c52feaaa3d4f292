package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification categories for outbound payment SMS.
const (
	NotificationInstructions = "payment_instructions"
	NotificationReminder     = "payment_reminder"
	NotificationConfirmed    = "payment_confirmed"
	NotificationFailed       = "payment_failed"
)

// Notification records an outbound SMS tied to a transaction. Append-only
// except for the delivery fields, which the gateway result updates once.
type Notification struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TransactionID    primitive.ObjectID `bson:"transactionId" json:"transaction_id"`
	PhoneNumber      string             `bson:"phoneNumber" json:"phone_number"`
	Message          string             `bson:"message" json:"message"`
	NotificationType string             `bson:"notificationType" json:"notification_type"`
	Delivered        bool               `bson:"delivered" json:"delivered"`
	DeliveryStatus   string             `bson:"deliveryStatus,omitempty" json:"delivery_status,omitempty"`
	MessageID        string             `bson:"messageId,omitempty" json:"message_id,omitempty"`
	SentAt           time.Time          `bson:"sentAt" json:"sent_at"`
}
