package remap

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrNoMappings is returned when no rule set is registered for an API name.
	ErrNoMappings = errors.New("no mappings registered")
	// ErrInvalidRule wraps rule validation failures.
	ErrInvalidRule = errors.New("invalid mapping rule")
	// ErrInternal marks a failure inside a transform, such as a panic, that
	// aborts the current document.
	ErrInternal = errors.New("internal mapping failure")
)

// ValidationErrors maps rule positions or field names to their validation
// errors. It is an alias for [validation.Errors] from ozzo-validation.
type ValidationErrors = validation.Errors
