package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes for every collection. Called once
// at startup; CreateMany is a no-op for indexes that already exist.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexed := []interface{ EnsureIndexes(context.Context) error }{
		&TransactionRepository{collection: db.Collection("mobile_transactions")},
		&ProviderRepository{collection: db.Collection("providers")},
		&EnrollmentRepository{collection: db.Collection("enrollments")},
		&UserRepository{collection: db.Collection("users")},
	}
	for _, repo := range indexed {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
