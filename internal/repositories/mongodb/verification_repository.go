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

// VerificationRepository implements the repositories.VerificationRepository interface
type VerificationRepository struct {
	collection *mongo.Collection
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *mongo.Database) repositories.VerificationRepository {
	return &VerificationRepository{
		collection: db.Collection("payment_verifications"),
	}
}

// Create appends a verification record. Records are never updated.
func (r *VerificationRepository) Create(ctx context.Context, verification *models.Verification) error {
	if verification.VerifiedAt.IsZero() {
		verification.VerifiedAt = time.Now()
	}
	res, err := r.collection.InsertOne(ctx, verification)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		verification.ID = id
	}
	return nil
}

// FindByTransactionID finds all verifications for a transaction
func (r *VerificationRepository) FindByTransactionID(ctx context.Context, transactionID primitive.ObjectID) ([]*models.Verification, error) {
	opts := options.Find().SetSort(bson.M{"verifiedAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"transactionId": transactionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var verifications []*models.Verification
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}
