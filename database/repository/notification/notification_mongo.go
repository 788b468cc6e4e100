package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"backoffice/database"
	"backoffice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo creates a new NotificationRepository backed by the notifications collection.
func NewMongoNotificationRepo(db *mongo.Database) NotificationRepository {
	repo := &MongoNotificationRepo{coll: db.Collection("notifications")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "read", Value: 1}, {Key: "timestamp", Value: -1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// List returns up to limit notifications, newest first.
func (r *MongoNotificationRepo) List(ctx context.Context, limit int) ([]models.Notification, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications.
func (r *MongoNotificationRepo) UnreadCount(ctx context.Context) (int, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(n), nil
}

// Insert stores a new notification.
func (r *MongoNotificationRepo) Insert(ctx context.Context, n models.Notification) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
	}
	return nil
}

// MarkRead flips a single notification to read.
func (r *MongoNotificationRepo) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification to read.
func (r *MongoNotificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	result, err := r.coll.UpdateMany(ctx, bson.M{"read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.ModifiedCount, nil
}

// Delete removes a notification.
func (r *MongoNotificationRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
