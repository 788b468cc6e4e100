package models

import "time"

// Subscription is a recurring plan attached to a customer.
type Subscription struct {
	ID           string       `bson:"id" json:"id"`
	CustomerID   string       `bson:"customerId" json:"customerId"`
	CustomerName string       `bson:"customerName" json:"customerName"`
	CustomerType CustomerType `bson:"customerType,omitempty" json:"customerType,omitempty"`
	PlanName     string       `bson:"planName" json:"planName"`
	Amount       float64      `bson:"amount" json:"amount"`
	Currency     string       `bson:"currency" json:"currency"`
	BillingCycle string       `bson:"billingCycle,omitempty" json:"billingCycle,omitempty"` // "monthly", "yearly"
	Status       string       `bson:"status" json:"status"`                                 // e.g. "active", "cancelled", "expired"
	StartDate    *time.Time   `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate      *time.Time   `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// SubscriptionPage is one page of subscriptions.
type SubscriptionPage = Page[Subscription]
