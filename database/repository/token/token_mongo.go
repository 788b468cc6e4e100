package tokenRepo

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

// MongoTokenRepo implements TokenRepository using MongoDB.
type MongoTokenRepo struct {
	coll *mongo.Collection
}

// NewMongoTokenRepo creates a new TokenRepository backed by the token_transactions collection.
func NewMongoTokenRepo(db *mongo.Database) TokenRepository {
	repo := &MongoTokenRepo{coll: db.Collection("token_transactions")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "transactionDate", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// List returns one page of token transactions with totals.
func (r *MongoTokenRepo) List(ctx context.Context, req models.ListRequest) (*models.TokenPage, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	req = req.Normalize(50)
	transactions, total, err := database.FindPage[models.TokenTransaction](ctx, r.coll, database.StatusFilter(req.Status), "transactionDate", req, true)
	if err != nil {
		return nil, err
	}
	page := models.NewPage(transactions, total, req)
	return &page, nil
}

// GetByID retrieves a token transaction by id.
func (r *MongoTokenRepo) GetByID(ctx context.Context, id string) (*models.TokenTransaction, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var txn models.TokenTransaction
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&txn); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch token transaction with id %s: %w", id, err)
	}
	return &txn, nil
}
