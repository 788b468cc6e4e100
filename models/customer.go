package models

import "time"

// CustomerType distinguishes small businesses from financial institutions.
type CustomerType string

const (
	CustomerTypePME       CustomerType = "pme"
	CustomerTypeFinancial CustomerType = "financial"
)

// Valid reports whether t is a known customer type.
func (t CustomerType) Valid() bool {
	return t == CustomerTypePME || t == CustomerTypeFinancial
}

// Customer is an account holder managed from the console.
type Customer struct {
	ID        string       `bson:"id" json:"id"`
	Name      string       `bson:"name" json:"name"`
	Email     string       `bson:"email" json:"email"`
	Phone     string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Type      CustomerType `bson:"type" json:"type"`
	Status    string       `bson:"status" json:"status"` // e.g. "active", "suspended"
	CreatedAt *time.Time   `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time   `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// CustomerPage is the customer listing envelope. The customer endpoint does
// not report totals.
type CustomerPage struct {
	Customers []Customer `json:"customers"`
}
