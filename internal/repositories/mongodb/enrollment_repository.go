package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/repositories"
)

// EnrollmentRepository implements the repositories.EnrollmentRepository interface
type EnrollmentRepository struct {
	collection *mongo.Collection
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *mongo.Database) repositories.EnrollmentRepository {
	return &EnrollmentRepository{
		collection: db.Collection("enrollments"),
	}
}

// EnsureIndexes creates the unique (user, course) index that makes
// enrollment creation at-most-once under concurrent confirmations.
func (r *EnrollmentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByUserAndCourse finds an enrollment for a (user, course) pair
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.collection.FindOne(ctx, bson.M{
		"userId":   userID,
		"courseId": courseID,
	}).Decode(&enrollment)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetOrCreate inserts the enrollment unless one already exists for the
// (user, course) pair. The upsert with $setOnInsert keeps the operation
// a single atomic round trip, so two racing confirmations cannot create
// two enrollments.
func (r *EnrollmentRepository) GetOrCreate(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now()
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": enrollment.UserID, "courseId": enrollment.CourseID},
		bson.M{"$setOnInsert": bson.M{
			"userId":        enrollment.UserID,
			"courseId":      enrollment.CourseID,
			"amountPaid":    enrollment.AmountPaid,
			"paymentStatus": enrollment.PaymentStatus,
			"paymentMethod": enrollment.PaymentMethod,
			"enrolledAt":    enrollment.EnrolledAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		enrollment.ID = id
	}
	return res.UpsertedCount > 0, nil
}

// FindByUser finds all enrollments for a user
func (r *EnrollmentRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Enrollment, error) {
	opts := options.Find().SetSort(bson.M{"enrolledAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []*models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Count counts all enrollments
func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
