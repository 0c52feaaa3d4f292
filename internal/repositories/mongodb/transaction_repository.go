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

// TransactionRepository implements the repositories.TransactionRepository interface
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *mongo.Database) repositories.TransactionRepository {
	return &TransactionRepository{
		collection: db.Collection("mobile_transactions"),
	}
}

// EnsureIndexes creates the unique reference code index and the lookup
// indexes the payment workflow depends on. The unique index is what
// rejects a duplicate code at commit time; the generator retries on it.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "referenceCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "phoneNumber", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}}},
	})
	return err
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		tx.ID = id
	}
	return nil
}

// FindByID finds a transaction by ID
func (r *TransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByReferenceCode finds a transaction by its reference code
func (r *TransactionRepository) FindByReferenceCode(ctx context.Context, code string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"referenceCode": code}).Decode(&tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindPendingByReferenceCode finds a transaction by reference code that
// is still awaiting confirmation
func (r *TransactionRepository) FindPendingByReferenceCode(ctx context.Context, code string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{
		"referenceCode": code,
		"status":        models.StatusPending,
	}).Decode(&tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByReferenceCodeAndUser finds a transaction by reference code owned
// by the given user
func (r *TransactionRepository) FindByReferenceCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{
		"referenceCode": code,
		"userId":        userID,
	}).Decode(&tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindActiveByUserAndCourse finds the most recent initiated or pending
// transaction for a (user, course) pair
func (r *TransactionRepository) FindActiveByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Transaction, error) {
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{
		"userId":   userID,
		"courseId": courseID,
		"status":   bson.M{"$in": []string{models.StatusInitiated, models.StatusPending}},
	}, opts).Decode(&tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByUser finds a user's transactions with pagination
func (r *TransactionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// ExistsByReferenceCode reports whether any transaction holds the code
func (r *TransactionRepository) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"referenceCode": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// transition performs a single conditional status update. A zero
// matched count means the transaction was not in an allowed prior
// status, reported as false so the caller can reject the transition.
func (r *TransactionRepository) transition(ctx context.Context, id primitive.ObjectID, from []string, set bson.M) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// MarkPending transitions initiated -> pending
func (r *TransactionRepository) MarkPending(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return r.transition(ctx, id, []string{models.StatusInitiated}, bson.M{
		"status":    models.StatusPending,
		"updatedAt": at,
	})
}

// Confirm transitions pending -> confirmed and stamps confirmedAt
func (r *TransactionRepository) Confirm(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return r.transition(ctx, id, []string{models.StatusPending}, bson.M{
		"status":      models.StatusConfirmed,
		"confirmedAt": at,
		"updatedAt":   at,
	})
}

// MarkFailed transitions pending -> failed and records the reason
func (r *TransactionRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (bool, error) {
	return r.transition(ctx, id, []string{models.StatusPending}, bson.M{
		"status":        models.StatusFailed,
		"failureReason": reason,
		"updatedAt":     at,
	})
}

// Cancel transitions initiated or pending -> cancelled
func (r *TransactionRepository) Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return r.transition(ctx, id, []string{models.StatusInitiated, models.StatusPending}, bson.M{
		"status":    models.StatusCancelled,
		"updatedAt": at,
	})
}

// ExpirePending bulk-transitions pending transactions whose expiry has
// passed. The filter re-checks status at update time, so a confirmation
// landing between scan and update is never clobbered.
func (r *TransactionRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{
		"status":    models.StatusPending,
		"expiresAt": bson.M{"$lt": cutoff},
	}, bson.M{"$set": bson.M{
		"status":    models.StatusExpired,
		"updatedAt": cutoff,
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Count counts all transactions
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
