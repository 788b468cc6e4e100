package aggregator

import (
	"cmp"
	"slices"
	"strings"

	"backoffice/models"
)

// ApplySearch keeps the items whose customer name, customer id or details
// contain term, ignoring case. A blank term keeps everything.
func ApplySearch(items []models.UnifiedItem, term string) []models.UnifiedItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	out := make([]models.UnifiedItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.CustomerName), term) ||
			strings.Contains(strings.ToLower(item.CustomerID), term) ||
			strings.Contains(strings.ToLower(item.Details), term) {
			out = append(out, item)
		}
	}
	return out
}

// ApplyStatus keeps the items whose raw status equals status, ignoring case.
// An empty status keeps everything.
func ApplyStatus(items []models.UnifiedItem, status string) []models.UnifiedItem {
	if status == "" {
		return items
	}

	out := make([]models.UnifiedItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Status, status) {
			out = append(out, item)
		}
	}
	return out
}

// SortItems sorts items in place by field. The sort is stable, so ties keep
// their merge order in both directions. Items without a value for field always
// come last.
func SortItems(items []models.UnifiedItem, field models.SortField, dir models.SortDirection) {
	slices.SortStableFunc(items, func(a, b models.UnifiedItem) int {
		c, aok, bok := compareField(a, b, field)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		if dir == models.SortDesc {
			return -c
		}
		return c
	})
}

// compareField compares a and b on field and reports which of them carry a
// value for it.
func compareField(a, b models.UnifiedItem, field models.SortField) (int, bool, bool) {
	switch field {
	case models.SortByOccurredAt:
		aok, bok := !a.OccurredAt.IsZero(), !b.OccurredAt.IsZero()
		return a.OccurredAt.Compare(b.OccurredAt), aok, bok
	case models.SortByAmount:
		if a.Amount == nil || b.Amount == nil {
			return 0, a.Amount != nil, b.Amount != nil
		}
		return cmp.Compare(*a.Amount, *b.Amount), true, true
	case models.SortByCustomerName:
		return strings.Compare(a.CustomerName, b.CustomerName), true, true
	case models.SortByCustomerID:
		return strings.Compare(a.CustomerID, b.CustomerID), true, true
	case models.SortByCustomerType:
		return strings.Compare(string(a.CustomerType), string(b.CustomerType)), true, true
	case models.SortByStatus:
		return strings.Compare(a.Status, b.Status), true, true
	case models.SortByKind:
		return strings.Compare(string(a.Kind), string(b.Kind)), true, true
	case models.SortByID:
		return strings.Compare(a.ID, b.ID), true, true
	case models.SortByDetails:
		return strings.Compare(a.Details, b.Details), true, true
	}
	// Unknown fields have no value on any item, which leaves the order as is.
	return 0, false, false
}

// Paginate returns the [(page-1)*pageSize, page*pageSize) window of items.
func Paginate(items []models.UnifiedItem, page, pageSize int) []models.UnifiedItem {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []models.UnifiedItem{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []models.UnifiedItem{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
