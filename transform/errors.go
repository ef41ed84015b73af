package transform

import "errors"

var (
	// ErrMissingParam means a transform was configured without a required parameter.
	ErrMissingParam = errors.New("missing transform parameter")
	// ErrShapeMismatch means the value has a type the transform cannot handle.
	ErrShapeMismatch = errors.New("unexpected value type")
	// ErrInvalidDate means a value could not be parsed as a date.
	ErrInvalidDate = errors.New("invalid date")
)
