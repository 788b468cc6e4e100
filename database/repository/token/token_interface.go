package tokenRepo

import (
	"context"

	"backoffice/models"
)

// TokenRepository defines read access to token transactions.
type TokenRepository interface {
	// List returns one page of token transactions, newest first, optionally filtered by status.
	List(ctx context.Context, req models.ListRequest) (*models.TokenPage, error)
	// GetByID retrieves a single record by id.
	GetByID(ctx context.Context, id string) (*models.TokenTransaction, error)
}
