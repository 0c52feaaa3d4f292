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

// NotificationRepository implements the repositories.NotificationRepository interface
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) repositories.NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("sms_notifications"),
	}
}

// Create creates a new notification record
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.SentAt.IsZero() {
		notification.SentAt = time.Now()
	}
	res, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		notification.ID = id
	}
	return nil
}

// UpdateDelivery records the delivery outcome for a sent notification
func (r *NotificationRepository) UpdateDelivery(ctx context.Context, id primitive.ObjectID, delivered bool, status, messageID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"delivered":      delivered,
		"deliveryStatus": status,
		"messageId":      messageID,
	}})
	return err
}

// FindByTransactionID finds all notifications for a transaction
func (r *NotificationRepository) FindByTransactionID(ctx context.Context, transactionID primitive.ObjectID) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.M{"sentAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"transactionId": transactionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// Count counts all notifications
func (r *NotificationRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
