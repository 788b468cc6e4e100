package subscriptionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/database"
	"backoffice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSubscriptionRepo implements SubscriptionRepository using MongoDB.
type MongoSubscriptionRepo struct {
	coll *mongo.Collection
}

// NewMongoSubscriptionRepo creates a new SubscriptionRepository backed by the subscriptions collection.
func NewMongoSubscriptionRepo(db *mongo.Database) SubscriptionRepository {
	repo := &MongoSubscriptionRepo{coll: db.Collection("subscriptions")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startDate", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// List returns one page of subscriptions with totals.
func (r *MongoSubscriptionRepo) List(ctx context.Context, req models.ListRequest) (*models.SubscriptionPage, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	req = req.Normalize(50)
	subscriptions, total, err := database.FindPage[models.Subscription](ctx, r.coll, database.StatusFilter(req.Status), "startDate", req, true)
	if err != nil {
		return nil, err
	}
	page := models.NewPage(subscriptions, total, req)
	return &page, nil
}

// GetByID retrieves a subscription by id.
func (r *MongoSubscriptionRepo) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var subscription models.Subscription
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&subscription); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription with id %s: %w", id, err)
	}
	return &subscription, nil
}
