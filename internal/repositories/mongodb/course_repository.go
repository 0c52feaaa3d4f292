package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/repositories"
)

// CourseRepository implements the repositories.CourseRepository interface
type CourseRepository struct {
	collection *mongo.Collection
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *mongo.Database) repositories.CourseRepository {
	return &CourseRepository{
		collection: db.Collection("courses"),
	}
}

// FindByID finds a course by ID
func (r *CourseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
