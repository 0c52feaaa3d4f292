package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verification methods.
const (
	VerificationSMS     = "sms"
	VerificationManual  = "manual"
	VerificationWebhook = "webhook"
	VerificationAdmin   = "admin"
)

// Verification is an append-only audit record of a confirmation (or
// rejection) decision made against a transaction. Never mutated after
// creation.
type Verification struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	TransactionID primitive.ObjectID  `bson:"transactionId" json:"transaction_id"`
	Method        string              `bson:"method" json:"method"`
	VerifiedBy    *primitive.ObjectID `bson:"verifiedBy,omitempty" json:"verified_by,omitempty"`
	IsSuccessful  bool                `bson:"isSuccessful" json:"is_successful"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	VerifiedAt    time.Time           `bson:"verifiedAt" json:"verified_at"`
}
