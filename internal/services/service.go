package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/brightkatongo/learn-hub/internal/models"
)

// SMSOutcome classifies an inbound provider SMS. A message either
// matches no transaction at all, matches one but does not read as a
// successful payment, or confirms a payment.
type SMSOutcome int

const (
	SMSNoMatch SMSOutcome = iota
	SMSMatchedFailure
	SMSMatchedSuccess
)

// String returns the wire name of the outcome.
func (o SMSOutcome) String() string {
	switch o {
	case SMSMatchedFailure:
		return "matched_failure"
	case SMSMatchedSuccess:
		return "matched_success"
	default:
		return "no_match"
	}
}

// TransactionStatus is the public status view of a transaction.
type TransactionStatus struct {
	ReferenceCode string    `json:"reference_code"`
	Status        string    `json:"status"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Provider      string    `json:"provider"`
	CourseTitle   string    `json:"course_title"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsExpired     bool      `json:"is_expired"`
	CreatedAt     time.Time `json:"created_at"`
}

// USSDInstructions is the step-by-step dial sequence for completing a
// payment on a provider's USSD menu.
type USSDInstructions struct {
	Steps         []string `json:"steps"`
	UssdCode      string   `json:"ussd_code"`
	QRCodeData    string   `json:"qr_code_data"`
	EstimatedTime string   `json:"estimated_time"`
}

// PaymentService owns the mobile money payment lifecycle.
type PaymentService interface {
	InitiatePayment(ctx context.Context, userID primitive.ObjectID, course *models.Course, providerName, rawPhone string) (*models.Transaction, *USSDInstructions, error)
	ActiveTransaction(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Transaction, error)
	ConfirmPayment(ctx context.Context, tx *models.Transaction, method string, verifiedBy *primitive.ObjectID, notes string) (bool, error)
	CancelPayment(ctx context.Context, referenceCode string, userID primitive.ObjectID) error
	ExpirePending(ctx context.Context) (int64, error)
	ProcessInboundSMS(ctx context.Context, body, sender string) (SMSOutcome, error)
	TransactionStatus(ctx context.Context, referenceCode string) (*TransactionStatus, error)
	PaymentInstructions(ctx context.Context, referenceCode string, userID primitive.ObjectID) (*models.Transaction, *USSDInstructions, error)
	SendReminder(ctx context.Context, referenceCode string) error
	TransactionByReference(ctx context.Context, referenceCode string, userID primitive.ObjectID) (*models.Transaction, error)
	FindByReference(ctx context.Context, referenceCode string) (*models.Transaction, error)
	UserTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error)
	ActiveProviders(ctx context.Context) ([]*models.Provider, error)
}

// NotificationService dispatches payment SMS and records each attempt.
type NotificationService interface {
	SendPaymentInstructions(ctx context.Context, tx *models.Transaction, course *models.Course, provider *models.Provider) error
	SendPaymentConfirmation(ctx context.Context, tx *models.Transaction, course *models.Course) error
	SendPaymentReminder(ctx context.Context, tx *models.Transaction, course *models.Course) error
	SendPaymentFailed(ctx context.Context, tx *models.Transaction, course *models.Course) error
}

// EnrollmentService creates enrollments outside the payment flow, in
// particular for free courses that bypass mobile money entirely.
type EnrollmentService interface {
	EnrollFree(ctx context.Context, userID primitive.ObjectID, course *models.Course) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID primitive.ObjectID) (bool, error)
}

// AuthService authenticates users and issues bearer tokens.
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}
