package models

// ListRequest is the page/limit/status request every entity listing accepts.
// Status is ignored by sources that do not support it.
type ListRequest struct {
	Page   int    `form:"page" json:"page"`
	Limit  int    `form:"limit" json:"limit"`
	Status string `form:"status" json:"status,omitempty"`
}

// Normalize clamps page and limit to sane values.
func (r ListRequest) Normalize(defaultLimit int) ListRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	return r
}

// Skip returns the number of records before the requested page.
func (r ListRequest) Skip() int64 {
	return int64((r.Page - 1) * r.Limit)
}

// Page is the paginated envelope returned by the payment, subscription and
// token listings.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds a page envelope, deriving TotalPages from total and limit.
func NewPage[T any](items []T, total int, req ListRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Limit > 0 {
		pages = (total + req.Limit - 1) / req.Limit
	}
	return Page[T]{Items: items, TotalCount: total, Page: req.Page, TotalPages: pages}
}
