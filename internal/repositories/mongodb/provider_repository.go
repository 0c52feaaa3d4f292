package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/repositories"
)

// ProviderRepository implements the repositories.ProviderRepository interface
type ProviderRepository struct {
	collection *mongo.Collection
}

// NewProviderRepository creates a new ProviderRepository
func NewProviderRepository(db *mongo.Database) repositories.ProviderRepository {
	return &ProviderRepository{
		collection: db.Collection("providers"),
	}
}

// EnsureIndexes creates the unique provider name index
func (r *ProviderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByName finds a provider by name
func (r *ProviderRepository) FindByName(ctx context.Context, name string) (*models.Provider, error) {
	var provider models.Provider
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&provider)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// FindActive finds all active providers
func (r *ProviderRepository) FindActive(ctx context.Context) ([]*models.Provider, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

// FindAll finds all providers
func (r *ProviderRepository) FindAll(ctx context.Context) ([]*models.Provider, error) {
	return r.find(ctx, bson.M{})
}

func (r *ProviderRepository) find(ctx context.Context, filter bson.M) ([]*models.Provider, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var providers []*models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// Upsert inserts the provider or leaves an existing record with the same
// name untouched. Returns true when a new record was created.
func (r *ProviderRepository) Upsert(ctx context.Context, provider *models.Provider) (bool, error) {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"name": provider.Name},
		bson.M{"$setOnInsert": bson.M{
			"name":           provider.Name,
			"displayName":    provider.DisplayName,
			"ussdCode":       provider.UssdCode,
			"merchantCode":   provider.MerchantCode,
			"businessNumber": provider.BusinessNumber,
			"payeeCode":      provider.PayeeCode,
			"phonePrefixes":  provider.PhonePrefixes,
			"instructions":   provider.Instructions,
			"isActive":       provider.IsActive,
			"createdAt":      now,
			"updatedAt":      now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
