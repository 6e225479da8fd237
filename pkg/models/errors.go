package models

import (
	"context"
	"errors"
)

// --- Sentinel errors ---

// ErrEmptyInput is returned when a price series has fewer than two points
// or a bootstrap sample is empty.
var ErrEmptyInput = errors.New("empty input")

// ErrDataUnavailable is returned when a provider has no usable series for a range.
var ErrDataUnavailable = errors.New("data unavailable")

// ErrAlignmentEmpty is reported when asset and benchmark dates do not overlap
// inside the event window. The CAR of such a window is 0.
var ErrAlignmentEmpty = errors.New("alignment empty")

// ErrInputSchema is returned for malformed announcement records.
var ErrInputSchema = errors.New("input schema error")

// ErrorKind classifies a failure for reporting.
type ErrorKind string

const (
	KindEmptyInput      ErrorKind = "EmptyInput"
	KindDataUnavailable ErrorKind = "DataUnavailable"
	KindAlignmentEmpty  ErrorKind = "AlignmentEmpty"
	KindInputSchema     ErrorKind = "InputSchemaError"
	KindCancelled       ErrorKind = "Cancelled"
	KindProvider        ErrorKind = "ProviderError"
)

// KindOf maps an error onto its ErrorKind. Unknown errors, including
// per-request deadlines, are provider errors.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputSchema):
		return KindInputSchema
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrAlignmentEmpty):
		return KindAlignmentEmpty
	case errors.Is(err, context.Canceled):
		return KindCancelled
	default:
		return KindProvider
	}
}
