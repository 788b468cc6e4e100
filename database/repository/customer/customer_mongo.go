package customerRepo

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

// MongoCustomerRepo implements CustomerRepository using MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo creates a new CustomerRepository backed by the customers collection.
func NewMongoCustomerRepo(db *mongo.Database) CustomerRepository {
	repo := &MongoCustomerRepo{coll: db.Collection("customers")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// List returns one page of customers.
func (r *MongoCustomerRepo) List(ctx context.Context, req models.ListRequest) (*models.CustomerPage, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	req = req.Normalize(50)
	customers, _, err := database.FindPage[models.Customer](ctx, r.coll, database.StatusFilter(req.Status), "createdAt", req, false)
	if err != nil {
		return nil, err
	}
	return &models.CustomerPage{Customers: customers}, nil
}

// GetByID retrieves a customer by id.
func (r *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&customer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch customer with id %s: %w", id, err)
	}
	return &customer, nil
}

// Create inserts a new customer document.
func (r *MongoCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	if customer.CreatedAt == nil {
		customer.CreatedAt = &now
	}
	customer.UpdatedAt = &now

	if _, err := r.coll.InsertOne(ctx, customer); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}
