package models

import "time"

// Payment is a single settled or pending payment made by a customer.
type Payment struct {
	ID           string       `bson:"id" json:"id"`
	CustomerID   string       `bson:"customerId" json:"customerId"`
	CustomerName string       `bson:"customerName" json:"customerName"`
	CustomerType CustomerType `bson:"customerType,omitempty" json:"customerType,omitempty"`
	Amount       float64      `bson:"amount" json:"amount"`
	Currency     string       `bson:"currency" json:"currency"`
	Method       string       `bson:"method" json:"method"` // e.g. "card", "mobile_money", "transfer"
	Status       string       `bson:"status" json:"status"` // e.g. "completed", "pending", "failed"
	Reference    string       `bson:"reference,omitempty" json:"reference,omitempty"`
	PaymentDate  *time.Time   `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
}

// PaymentPage is one page of payments.
type PaymentPage = Page[Payment]
