package aggregator

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"backoffice/models"
)

// mapContext carries what a mapper needs beyond the record itself.
type mapContext struct {
	// now stands in for missing dates. It is fixed for a whole pass.
	now time.Time
	// customerTypes holds the types of the customers fetched in the same pass.
	customerTypes map[string]models.CustomerType
}

// resolveType picks the record's own customer type, then the type of the
// customer seen in this pass, then pme.
func (m mapContext) resolveType(own models.CustomerType, customerID string) models.CustomerType {
	if own.Valid() {
		return own
	}
	if t, ok := m.customerTypes[customerID]; ok && t.Valid() {
		return t
	}
	return models.CustomerTypePME
}

func (m mapContext) dateOr(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return m.now
	}
	return *t
}

// Record is a native source record that knows how to become a UnifiedItem.
// The set of implementations is closed to this package.
type Record interface {
	Kind() models.ItemKind
	toItem(m mapContext) models.UnifiedItem
}

type (
	customerRecord     models.Customer
	paymentRecord      models.Payment
	subscriptionRecord models.Subscription
	tokenRecord        models.TokenTransaction
)

func (customerRecord) Kind() models.ItemKind     { return models.KindCustomer }
func (paymentRecord) Kind() models.ItemKind      { return models.KindPayment }
func (subscriptionRecord) Kind() models.ItemKind { return models.KindSubscription }
func (tokenRecord) Kind() models.ItemKind        { return models.KindToken }

func (r customerRecord) toItem(m mapContext) models.UnifiedItem {
	t := r.Type
	if !t.Valid() {
		t = models.CustomerTypePME
	}
	details := customerTypeLabel(t) + " customer"
	if r.Email != "" {
		details += " · " + r.Email
	}
	return models.UnifiedItem{
		ID:           r.ID,
		Kind:         models.KindCustomer,
		OccurredAt:   m.dateOr(r.CreatedAt),
		CustomerName: r.Name,
		CustomerID:   r.ID,
		CustomerType: t,
		Status:       r.Status,
		Details:      details,
		ActionURL:    actionURL(models.KindCustomer, r.ID),
	}
}

func (r paymentRecord) toItem(m mapContext) models.UnifiedItem {
	details := "Payment of " + formatMoney(r.Amount, r.Currency)
	if r.Method != "" {
		details += " via " + strings.ReplaceAll(r.Method, "_", " ")
	}
	if r.Reference != "" {
		details += " · ref " + r.Reference
	}
	return models.UnifiedItem{
		ID:           r.ID,
		Kind:         models.KindPayment,
		OccurredAt:   m.dateOr(r.PaymentDate),
		CustomerName: r.CustomerName,
		CustomerID:   r.CustomerID,
		CustomerType: m.resolveType(r.CustomerType, r.CustomerID),
		Status:       r.Status,
		Amount:       amount(r.Amount),
		Details:      details,
		ActionURL:    actionURL(models.KindPayment, r.ID),
	}
}

func (r subscriptionRecord) toItem(m mapContext) models.UnifiedItem {
	details := "Plan " + r.PlanName + " · " + formatMoney(r.Amount, r.Currency)
	if r.BillingCycle != "" {
		details += "/" + r.BillingCycle
	}
	if r.EndDate != nil && !r.EndDate.IsZero() {
		details += " · until " + r.EndDate.Format("2006-01-02")
	}
	return models.UnifiedItem{
		ID:           r.ID,
		Kind:         models.KindSubscription,
		OccurredAt:   m.dateOr(r.StartDate),
		CustomerName: r.CustomerName,
		CustomerID:   r.CustomerID,
		CustomerType: m.resolveType(r.CustomerType, r.CustomerID),
		Status:       r.Status,
		Amount:       amount(r.Amount),
		Details:      details,
		ActionURL:    actionURL(models.KindSubscription, r.ID),
	}
}

func (r tokenRecord) toItem(m mapContext) models.UnifiedItem {
	verb := humanize(string(r.Type))
	if verb == "" {
		verb = "Transaction"
	}
	details := fmt.Sprintf("%s of %d tokens", verb, r.Tokens)
	if r.Description != "" {
		details += " · " + r.Description
	}
	return models.UnifiedItem{
		ID:           r.ID,
		Kind:         models.KindToken,
		OccurredAt:   m.dateOr(r.TransactionDate),
		CustomerName: r.CustomerName,
		CustomerID:   r.CustomerID,
		CustomerType: m.resolveType(r.CustomerType, r.CustomerID),
		Status:       r.Status,
		Amount:       amount(r.Amount),
		Details:      details,
		ActionURL:    actionURL(models.KindToken, r.ID),
	}
}

// MapCustomer converts a customer into a UnifiedItem. now replaces a missing
// creation date.
func MapCustomer(c models.Customer, now time.Time) models.UnifiedItem {
	return customerRecord(c).toItem(mapContext{now: now})
}

// MapPayment converts a payment into a UnifiedItem. Without a customer type on
// the record the item defaults to pme.
func MapPayment(p models.Payment, now time.Time) models.UnifiedItem {
	return paymentRecord(p).toItem(mapContext{now: now})
}

// MapSubscription converts a subscription into a UnifiedItem.
func MapSubscription(s models.Subscription, now time.Time) models.UnifiedItem {
	return subscriptionRecord(s).toItem(mapContext{now: now})
}

// MapToken converts a token transaction into a UnifiedItem.
func MapToken(t models.TokenTransaction, now time.Time) models.UnifiedItem {
	return tokenRecord(t).toItem(mapContext{now: now})
}

// actionURL is the console deep link for an item.
func actionURL(kind models.ItemKind, id string) string {
	id = url.PathEscape(id)
	switch kind {
	case models.KindCustomer:
		return "/customers/" + id
	case models.KindPayment:
		return "/payments/" + id
	case models.KindSubscription:
		return "/subscriptions/" + id
	case models.KindToken:
		return "/tokens/transactions/" + id
	}
	return "/"
}

func amount(v float64) *float64 {
	return &v
}

func formatMoney(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, strings.ToUpper(currency))
}

func customerTypeLabel(t models.CustomerType) string {
	if t == models.CustomerTypeFinancial {
		return "Financial institution"
	}
	return "PME"
}

// humanize turns "mobile_money" into "Mobile money".
func humanize(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
