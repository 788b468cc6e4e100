package aggregator

import (
	"errors"
	"fmt"
	"strings"

	"backoffice/models"
)

// ErrInvalidFilter is returned for filter states that name unknown kinds,
// sort fields or directions.
var ErrInvalidFilter = errors.New("invalid filter")

// SourceFetchError records the failure of a single source during a pass.
type SourceFetchError struct {
	Kind  models.ItemKind
	Cause error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("%s source: %v", e.Kind, e.Cause)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Cause
}

// AggregationError is returned when at least one in-scope source failed. It
// carries every failure of the pass, in merge order.
type AggregationError struct {
	Causes []*SourceFetchError
}

func (e *AggregationError) Error() string {
	return "aggregation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns one message per failed source.
func (e *AggregationError) Messages() []string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return msgs
}

// Unwrap exposes every source failure to errors.Is and errors.As.
func (e *AggregationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, c := range e.Causes {
		errs = append(errs, c)
	}
	return errs
}

// IsAggregationError reports whether err (or any error in its chain) is an
// AggregationError and returns it.
func IsAggregationError(err error) (*AggregationError, bool) {
	var aggErr *AggregationError
	if errors.As(err, &aggErr) {
		return aggErr, true
	}
	return nil, false
}

// IsSourceFetchError reports whether err wraps a SourceFetchError and returns
// the first one found.
func IsSourceFetchError(err error) (*SourceFetchError, bool) {
	var srcErr *SourceFetchError
	if errors.As(err, &srcErr) {
		return srcErr, true
	}
	return nil, false
}
