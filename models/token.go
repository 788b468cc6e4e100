package models

import "time"

// TokenTransactionType describes the direction of a token movement.
type TokenTransactionType string

const (
	TokenPurchase TokenTransactionType = "purchase"
	TokenUsage    TokenTransactionType = "usage"
	TokenRefund   TokenTransactionType = "refund"
)

// TokenTransaction is a purchase, consumption or refund of billing tokens.
type TokenTransaction struct {
	ID              string               `bson:"id" json:"id"`
	CustomerID      string               `bson:"customerId" json:"customerId"`
	CustomerName    string               `bson:"customerName" json:"customerName"`
	CustomerType    CustomerType         `bson:"customerType,omitempty" json:"customerType,omitempty"`
	Type            TokenTransactionType `bson:"type" json:"type"`
	Tokens          int64                `bson:"tokens" json:"tokens"`
	Amount          float64              `bson:"amount" json:"amount"`
	Status          string               `bson:"status" json:"status"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	TransactionDate *time.Time           `bson:"transactionDate,omitempty" json:"transactionDate,omitempty"`
}

// TokenPage is one page of token transactions.
type TokenPage = Page[TokenTransaction]
