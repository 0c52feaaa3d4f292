package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/brightkatongo/learn-hub/internal/models"
)

// TransactionRepository defines the interface for payment transaction
// data operations. Every status transition is a single conditional
// update: the boolean result is false when the transaction was not in
// the required prior status, and the caller must treat that as a
// definite rejection.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	FindByReferenceCode(ctx context.Context, code string) (*models.Transaction, error)
	FindPendingByReferenceCode(ctx context.Context, code string) (*models.Transaction, error)
	FindByReferenceCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Transaction, error)
	FindActiveByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Transaction, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error)
	ExistsByReferenceCode(ctx context.Context, code string) (bool, error)

	// MarkPending transitions initiated -> pending.
	MarkPending(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	// Confirm transitions pending -> confirmed and stamps confirmedAt.
	Confirm(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	// MarkFailed transitions pending -> failed and records the reason.
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (bool, error)
	// Cancel transitions initiated or pending -> cancelled.
	Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	// ExpirePending bulk-transitions pending transactions whose expiry
	// has passed. The status check happens in the update filter itself.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)

	Count(ctx context.Context) (int64, error)
}

// ProviderRepository defines the interface for the mobile money provider
// directory.
type ProviderRepository interface {
	FindByName(ctx context.Context, name string) (*models.Provider, error)
	FindActive(ctx context.Context) ([]*models.Provider, error)
	FindAll(ctx context.Context) ([]*models.Provider, error)
	Upsert(ctx context.Context, provider *models.Provider) (bool, error)
}

// VerificationRepository defines the interface for the append-only
// verification audit trail.
type VerificationRepository interface {
	Create(ctx context.Context, verification *models.Verification) error
	FindByTransactionID(ctx context.Context, transactionID primitive.ObjectID) ([]*models.Verification, error)
}

// NotificationRepository defines the interface for outbound SMS records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	UpdateDelivery(ctx context.Context, id primitive.ObjectID, delivered bool, status, messageID string) error
	FindByTransactionID(ctx context.Context, transactionID primitive.ObjectID) ([]*models.Notification, error)
	Count(ctx context.Context) (int64, error)
}

// EnrollmentRepository defines the interface for enrollment data
// operations.
type EnrollmentRepository interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Enrollment, error)
	// GetOrCreate inserts the enrollment unless one already exists for
	// (user, course); the boolean reports whether a row was created.
	GetOrCreate(ctx context.Context, enrollment *models.Enrollment) (bool, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Enrollment, error)
	Count(ctx context.Context) (int64, error)
}

// CourseRepository defines the interface for course lookups used by the
// payment workflow.
type CourseRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
}

// UserRepository defines the interface for user lookups used by
// authentication.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}
