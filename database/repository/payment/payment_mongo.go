package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo creates a new PaymentRepository backed by the payments collection.
func NewMongoPaymentRepo(db *mongo.Database) PaymentRepository {
	repo := &MongoPaymentRepo{coll: db.Collection("payments")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "paymentDate", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// List returns one page of payments with totals.
func (r *MongoPaymentRepo) List(ctx context.Context, req models.ListRequest) (*models.PaymentPage, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	req = req.Normalize(50)
	payments, total, err := database.FindPage[models.Payment](ctx, r.coll, database.StatusFilter(req.Status), "paymentDate", req, true)
	if err != nil {
		return nil, err
	}
	page := models.NewPage(payments, total, req)
	return &page, nil
}

// GetByID retrieves a payment by id.
func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment with id %s: %w", id, err)
	}
	return &payment, nil
}
