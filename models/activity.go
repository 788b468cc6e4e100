package models

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind identifies which source produced a UnifiedItem.
type ItemKind string

const (
	KindAll          ItemKind = "all"
	KindCustomer     ItemKind = "customer"
	KindPayment      ItemKind = "payment"
	KindSubscription ItemKind = "subscription"
	KindToken        ItemKind = "token"
)

// ItemKinds lists the concrete kinds in merge order.
var ItemKinds = []ItemKind{KindCustomer, KindPayment, KindSubscription, KindToken}

// UnifiedItem is the common row shape of the merged activity view.
type UnifiedItem struct {
	ID           string       `json:"id"`
	Kind         ItemKind     `json:"kind"`
	OccurredAt   time.Time    `json:"occurredAt"`
	CustomerName string       `json:"customerName"`
	CustomerID   string       `json:"customerId"`
	CustomerType CustomerType `json:"customerType"`
	Status       string       `json:"status"`
	Amount       *float64     `json:"amount,omitempty"`
	Details      string       `json:"details"`
	ActionURL    string       `json:"actionUrl"`
}

// ItemKey is the identity of a UnifiedItem. IDs are only unique within a kind.
type ItemKey struct {
	Kind ItemKind
	ID   string
}

func (k ItemKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// Key returns the (kind, id) identity of the item.
func (i UnifiedItem) Key() ItemKey {
	return ItemKey{Kind: i.Kind, ID: i.ID}
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField names a sortable UnifiedItem field.
type SortField string

const (
	SortByOccurredAt   SortField = "occurredAt"
	SortByCustomerName SortField = "customerName"
	SortByCustomerID   SortField = "customerId"
	SortByCustomerType SortField = "customerType"
	SortByStatus       SortField = "status"
	SortByAmount       SortField = "amount"
	SortByKind         SortField = "kind"
	SortByID           SortField = "id"
	SortByDetails      SortField = "details"
)

var sortFields = map[SortField]bool{
	SortByOccurredAt: true, SortByCustomerName: true, SortByCustomerID: true,
	SortByCustomerType: true, SortByStatus: true, SortByAmount: true,
	SortByKind: true, SortByID: true, SortByDetails: true,
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 500
)

// FilterState is an immutable snapshot of what the activity view shows.
type FilterState struct {
	Search        string        `form:"search" json:"search"`
	Kind          ItemKind      `form:"kind" json:"kind"`
	Status        string        `form:"status" json:"status"`
	SortBy        SortField     `form:"sortBy" json:"sortBy"`
	SortDirection SortDirection `form:"sortDirection" json:"sortDirection"`
	Page          int           `form:"page" json:"page"`
	PageSize      int           `form:"pageSize" json:"pageSize"`
}

// DefaultFilterState is everything, newest first, first page.
func DefaultFilterState() FilterState {
	return FilterState{
		Kind:          KindAll,
		SortBy:        SortByOccurredAt,
		SortDirection: SortDesc,
		Page:          1,
		PageSize:      DefaultPageSize,
	}
}

// Normalize fills empty fields with defaults and clamps page and pageSize.
func (f FilterState) Normalize() FilterState {
	if f.Kind == "" {
		f.Kind = KindAll
	}
	if f.SortBy == "" {
		f.SortBy = SortByOccurredAt
	}
	if f.SortDirection == "" {
		f.SortDirection = SortDesc
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Validate rejects unknown kinds, sort fields and directions.
func (f FilterState) Validate() error {
	switch f.Kind {
	case KindAll, KindCustomer, KindPayment, KindSubscription, KindToken:
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
	if !sortFields[f.SortBy] {
		return fmt.Errorf("unknown sort field %q", f.SortBy)
	}
	if f.SortDirection != SortAsc && f.SortDirection != SortDesc {
		return fmt.Errorf("unknown sort direction %q", f.SortDirection)
	}
	return nil
}

// Includes reports whether items of kind k are in scope.
func (f FilterState) Includes(k ItemKind) bool {
	return f.Kind == KindAll || f.Kind == "" || f.Kind == k
}

// StatusFilter returns the status to filter by, or "" for any status.
func (f FilterState) StatusFilter() string {
	s := strings.TrimSpace(f.Status)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
