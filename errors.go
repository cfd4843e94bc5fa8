package main

import (
	"errors"
	"fmt"
)

// ──────────────────────────────────────────────
// Error taxonomy
// ──────────────────────────────────────────────

// ErrModelUnavailable signals that the trained classifier artifact could
// not be loaded. It never reaches a caller: the resolver recovers by
// switching to the rule engine.
var ErrModelUnavailable = errors.New("classifier model unavailable")

// ValidationError reports the first missing or out-of-range input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown crop identifier.
type NotFoundError struct {
	Crop string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Crop %q not found", e.Crop)
}

// ExternalServiceError wraps a failure of the generative responder call.
// The chat path absorbs it and substitutes canned text.
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("generative responder: %v", e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
