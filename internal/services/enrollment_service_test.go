package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/brightkatongo/learn-hub/internal/models"
)

func TestEnrollFree(t *testing.T) {
	repo := &fakeEnrollmentRepo{}
	service := NewEnrollmentService(repo)
	userID := primitive.NewObjectID()
	course := &models.Course{ID: primitive.NewObjectID(), Title: "Free Course", IsFree: true}

	enrollment, err := service.EnrollFree(context.Background(), userID, course)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodFree, enrollment.PaymentMethod)
	assert.Equal(t, models.EnrollmentCompleted, enrollment.PaymentStatus)
	assert.Zero(t, enrollment.AmountPaid)

	// Repeat enrollment returns the existing record.
	again, err := service.EnrollFree(context.Background(), userID, course)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, again.ID)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEnrollFreeRejectsPaidCourse(t *testing.T) {
	service := NewEnrollmentService(&fakeEnrollmentRepo{})
	course := &models.Course{ID: primitive.NewObjectID(), Title: "Paid Course", Price: 150}

	_, err := service.EnrollFree(context.Background(), primitive.NewObjectID(), course)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestIsEnrolled(t *testing.T) {
	repo := &fakeEnrollmentRepo{}
	service := NewEnrollmentService(repo)
	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()

	enrolled, err := service.IsEnrolled(context.Background(), userID, courseID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	_, err = repo.GetOrCreate(context.Background(), &models.Enrollment{UserID: userID, CourseID: courseID})
	require.NoError(t, err)

	enrolled, err = service.IsEnrolled(context.Background(), userID, courseID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}
