package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// intentIterator is the part of *paymentintent.Iter the source reads.
type intentIterator interface {
	Next() bool
	PaymentIntent() *stripe.PaymentIntent
	Err() error
}

// StripePaymentSource lists payments straight from Stripe payment intents.
// Stripe paginates by cursor, so page n is reached by skipping the records of
// the pages before it.
type StripePaymentSource struct {
	list func(params *stripe.PaymentIntentListParams) intentIterator
}

// NewStripePaymentSource uses the package-level stripe.Key.
func NewStripePaymentSource() *StripePaymentSource {
	return &StripePaymentSource{
		list: func(params *stripe.PaymentIntentListParams) intentIterator {
			return paymentintent.List(params)
		},
	}
}

// List returns one page of payment intents mapped to payments. Stripe reports
// no totals, so TotalPages is page+1 while more intents remain.
func (s *StripePaymentSource) List(ctx context.Context, req models.ListRequest) (*models.PaymentPage, error) {
	req = req.Normalize(50)

	params := &stripe.PaymentIntentListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(min(req.Limit, 100)))
	params.AddExpand("data.customer")

	it := s.list(params)
	skip := int(req.Skip())
	seen := 0
	more := false
	items := make([]models.Payment, 0, req.Limit)
	for it.Next() {
		pi := it.PaymentIntent()
		if req.Status != "" && !strings.EqualFold(string(pi.Status), req.Status) {
			continue
		}
		seen++
		if seen <= skip {
			continue
		}
		if len(items) == req.Limit {
			more = true
			break
		}
		items = append(items, paymentFromIntent(pi))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list payment intents: %w", err)
	}

	totalPages := req.Page
	if more {
		totalPages++
	}
	total := skip + len(items)
	if more {
		total++
	}
	page := models.PaymentPage{Items: items, TotalCount: total, Page: req.Page, TotalPages: totalPages}
	return &page, nil
}

func paymentFromIntent(pi *stripe.PaymentIntent) models.Payment {
	created := time.Unix(pi.Created, 0).UTC()
	p := models.Payment{
		ID:          pi.ID,
		Amount:      fromMinorUnits(pi.Amount, string(pi.Currency)),
		Currency:    strings.ToUpper(string(pi.Currency)),
		Status:      string(pi.Status),
		Reference:   pi.ID,
		PaymentDate: &created,
	}
	if len(pi.PaymentMethodTypes) > 0 {
		p.Method = pi.PaymentMethodTypes[0]
	}
	if t := models.CustomerType(pi.Metadata["customerType"]); t.Valid() {
		p.CustomerType = t
	}
	if pi.Customer != nil {
		p.CustomerID = pi.Customer.ID
		p.CustomerName = pi.Customer.Name
		if p.CustomerType == "" {
			if t := models.CustomerType(pi.Customer.Metadata["customerType"]); t.Valid() {
				p.CustomerType = t
			}
		}
	}
	return p
}

// Stripe amounts are in the smallest currency unit; these currencies have none.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

func fromMinorUnits(amount int64, currency string) float64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return float64(amount)
	}
	return float64(amount) / 100
}
