package paymentRepo

import (
	"context"

	"backoffice/models"
)

// PaymentRepository defines read access to payments.
type PaymentRepository interface {
	// List returns one page of payments, newest first, optionally filtered by status.
	List(ctx context.Context, req models.ListRequest) (*models.PaymentPage, error)
	// GetByID retrieves a single record by id.
	GetByID(ctx context.Context, id string) (*models.Payment, error)
}
