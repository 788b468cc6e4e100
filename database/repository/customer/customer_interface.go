package customerRepo

import (
	"context"

	"backoffice/models"
)

// CustomerRepository defines read access to customer records.
type CustomerRepository interface {
	// List returns one page of customers, newest first, optionally filtered by status.
	List(ctx context.Context, req models.ListRequest) (*models.CustomerPage, error)
	// GetByID retrieves a customer by id.
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	// Create inserts a new customer.
	Create(ctx context.Context, customer *models.Customer) error
}
