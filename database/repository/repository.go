package repository

import (
	customerRepo "backoffice/database/repository/customer"
	notificationRepo "backoffice/database/repository/notification"
	paymentRepo "backoffice/database/repository/payment"
	subscriptionRepo "backoffice/database/repository/subscription"
	tokenRepo "backoffice/database/repository/token"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	CustomerRepository     = customerRepo.CustomerRepository
	PaymentRepository      = paymentRepo.PaymentRepository
	SubscriptionRepository = subscriptionRepo.SubscriptionRepository
	TokenRepository        = tokenRepo.TokenRepository
	NotificationRepository = notificationRepo.NotificationRepository
)

// Repositories groups every collection the API reads or writes.
type Repositories struct {
	Customers     CustomerRepository
	Payments      PaymentRepository
	Subscriptions SubscriptionRepository
	Tokens        TokenRepository
	Notifications NotificationRepository
}

// NewMongoRepositories builds all repositories over db.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Customers:     customerRepo.NewMongoCustomerRepo(db),
		Payments:      paymentRepo.NewMongoPaymentRepo(db),
		Subscriptions: subscriptionRepo.NewMongoSubscriptionRepo(db),
		Tokens:        tokenRepo.NewMongoTokenRepo(db),
		Notifications: notificationRepo.NewMongoNotificationRepo(db),
	}
}
