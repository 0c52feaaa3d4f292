package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment payment statuses.
const (
	EnrollmentPending   = "pending"
	EnrollmentCompleted = "completed"
	EnrollmentFailed    = "failed"
	EnrollmentRefunded  = "refunded"
)

// Payment methods recorded on an enrollment.
const (
	PaymentMethodMobileMoney = "mobile_money"
	PaymentMethodFree        = "free"
)

// Enrollment grants a user access to a course. At most one exists per
// (user, course) pair, enforced by a unique index.
type Enrollment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"user_id"`
	CourseID      primitive.ObjectID `bson:"courseId" json:"course_id"`
	AmountPaid    float64            `bson:"amountPaid" json:"amount_paid"`
	PaymentStatus string             `bson:"paymentStatus" json:"payment_status"`
	PaymentMethod string             `bson:"paymentMethod" json:"payment_method"`
	EnrolledAt    time.Time          `bson:"enrolledAt" json:"enrolled_at"`
}
