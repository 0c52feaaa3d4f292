package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction statuses. A transaction starts as initiated, moves to
// pending once payment instructions have been dispatched, and ends in
// exactly one of the sticky terminal statuses.
const (
	StatusInitiated = "initiated"
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Transaction represents a mobile money payment attempt for a course.
type Transaction struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"user_id"`
	CourseID      primitive.ObjectID `bson:"courseId" json:"course_id"`
	ProviderName  string             `bson:"providerName" json:"provider_name"`
	PhoneNumber   string             `bson:"phoneNumber" json:"phone_number"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	ReferenceCode string             `bson:"referenceCode" json:"reference_code"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transaction_id,omitempty"`
	Status        string             `bson:"status" json:"status"`
	FailureReason string             `bson:"failureReason,omitempty" json:"failure_reason,omitempty"`
	ExpiresAt     time.Time          `bson:"expiresAt" json:"expires_at"`
	ConfirmedAt   *time.Time         `bson:"confirmedAt,omitempty" json:"confirmed_at,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// IsExpired reports whether the payment window has passed while the
// transaction is still waiting on the payer.
func (t *Transaction) IsExpired(now time.Time) bool {
	if t.Status != StatusInitiated && t.Status != StatusPending {
		return false
	}
	return now.After(t.ExpiresAt)
}

// Active reports whether the transaction still represents a payment
// attempt in progress.
func (t *Transaction) Active(now time.Time) bool {
	return (t.Status == StatusInitiated || t.Status == StatusPending) && !t.IsExpired(now)
}
