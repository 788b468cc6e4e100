package aggregator

import (
	"backoffice/database/repository"
)

// NewRepositorySources reads every kind from the Mongo repositories.
func NewRepositorySources(repos *repository.Repositories) Sources {
	return Sources{
		Customers:     repos.Customers,
		Payments:      repos.Payments,
		Subscriptions: repos.Subscriptions,
		Tokens:        repos.Tokens,
	}
}
