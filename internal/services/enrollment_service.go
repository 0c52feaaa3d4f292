package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/repositories"
)

// Compile-time check to ensure EnrollmentServiceImpl implements EnrollmentService
var _ EnrollmentService = (*EnrollmentServiceImpl)(nil)

// EnrollmentServiceImpl creates enrollments for courses that do not go
// through the payment manager.
type EnrollmentServiceImpl struct {
	enrollmentRepo repositories.EnrollmentRepository
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(enrollmentRepo repositories.EnrollmentRepository) *EnrollmentServiceImpl {
	return &EnrollmentServiceImpl{enrollmentRepo: enrollmentRepo}
}

// EnrollFree enrolls a user in a free course directly. A repeat call
// returns the existing enrollment unchanged.
func (s *EnrollmentServiceImpl) EnrollFree(ctx context.Context, userID primitive.ObjectID, course *models.Course) (*models.Enrollment, error) {
	if !course.IsFree && course.Price > 0 {
		return nil, &ValidationError{Message: "course is not free"}
	}

	enrollment := &models.Enrollment{
		UserID:        userID,
		CourseID:      course.ID,
		AmountPaid:    0,
		PaymentStatus: models.EnrollmentCompleted,
		PaymentMethod: models.PaymentMethodFree,
		EnrolledAt:    time.Now(),
	}
	created, err := s.enrollmentRepo.GetOrCreate(ctx, enrollment)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	if !created {
		existing, err := s.enrollmentRepo.FindByUserAndCourse(ctx, userID, course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load enrollment: %w", err)
		}
		return existing, nil
	}

	slog.Info("free enrollment created", "userId", userID.Hex(), "courseId", course.ID.Hex())
	return enrollment, nil
}

// IsEnrolled reports whether the user already has an enrollment for the
// course.
func (s *EnrollmentServiceImpl) IsEnrolled(ctx context.Context, userID, courseID primitive.ObjectID) (bool, error) {
	_, err := s.enrollmentRepo.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
