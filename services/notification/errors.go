package notification

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDraft is returned by Create for drafts without a known type or a title.
	ErrInvalidDraft = errors.New("invalid notification draft")
	// ErrDisposed is returned by Channel operations after Close.
	ErrDisposed = errors.New("notification channel disposed")
	// ErrAlreadyStarted is returned by a second call to Channel.Start.
	ErrAlreadyStarted = errors.New("notification channel already started")
)

// NotificationBackendError wraps any failed list, count, mutation or
// subscribe call made against the notification backend.
type NotificationBackendError struct {
	Op    string
	Cause error
}

func (e *NotificationBackendError) Error() string {
	return fmt.Sprintf("notification backend: %s: %v", e.Op, e.Cause)
}

func (e *NotificationBackendError) Unwrap() error {
	return e.Cause
}

func backendError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &NotificationBackendError{Op: op, Cause: err}
}

// IsBackendError reports whether err wraps a NotificationBackendError and
// returns it.
func IsBackendError(err error) (*NotificationBackendError, bool) {
	var be *NotificationBackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
