package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrRateLimited means the scoring service asked us to back off. Never retried automatically.
	ErrRateLimited = errors.New("scoring service rate limit reached, try again later")
	// ErrOffline is returned by a drain attempted while the scoring service is unreachable.
	ErrOffline = errors.New("still offline")
	// ErrDrainInProgress is returned when another drain for the same user holds the lock.
	ErrDrainInProgress = errors.New("queue drain already in progress")

	ErrConsentRequired = errors.New("consent is required before baseline or check-ins")
	ErrProfileNotFound = errors.New("profile not found")
	ErrTipNotFound     = errors.New("saved tip not found")
	ErrUnknownModule   = errors.New("unknown learning module")
	ErrInvalidLogin    = errors.New("invalid profile id or passphrase")
)

// ValidationError carries field-level messages for input outside its declared range.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RemoteValidationError is a 400 from the scoring service. The payload must be corrected, not queued.
type RemoteValidationError struct {
	Message string
}

func (e *RemoteValidationError) Error() string {
	return "VALIDATION: " + e.Message
}

// ServerError covers every transient scoring failure: non-2xx statuses, timeouts and network errors.
// Status is zero when no response was received.
type ServerError struct {
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("SERVER_ERROR: %v", e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("SERVER_ERROR: status %d", e.Status)
	}
	return fmt.Sprintf("SERVER_ERROR: status %d: %v", e.Status, e.Err)
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsTransient reports whether a failed submission should be queued for a later retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *ServerError
	if errors.As(err, &se) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
