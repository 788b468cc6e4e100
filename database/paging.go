package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a document addressed by id does not exist.
var ErrNotFound = errors.New("document not found")

// NewContext creates a context with the given timeout derived from parent.
func NewContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// StatusFilter returns a bson filter matching status, or an empty filter.
func StatusFilter(status string) bson.M {
	if status == "" || status == "all" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

// FindPage runs a paginated, newest-first find and decodes the page into out.
// When withTotal is set it also counts the matching documents.
func FindPage[T any](
	ctx context.Context,
	coll *mongo.Collection,
	filter bson.M,
	sortField string,
	req models.ListRequest,
	withTotal bool,
) ([]T, int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "id", Value: 1}}).
		SetSkip(req.Skip()).
		SetLimit(int64(req.Limit))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}

	total := 0
	if withTotal {
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count %s: %w", coll.Name(), err)
		}
		total = int(n)
	}
	return items, total, nil
}

// EnsureIndexes creates the given indexes on coll.
func EnsureIndexes(coll *mongo.Collection, indexModels []mongo.IndexModel) error {
	ctx, cancel := NewContext(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
	}
	return nil
}
