// Package errors provides typed errors for the btcmacro pipeline.
//
// All errors produced by the library packages are one of a small set of
// concrete types that work with errors.Is / errors.As:
//
//   - ValueError: an argument value is invalid
//   - DimensionError: matrix/vector dimensions do not line up
//   - NotFittedError: a model method was called before Fit
//   - ModelError: an operation failed with a sentinel cause
//   - DataError: a pipeline-stage failure with a user-facing kind
//
// Sentinel errors (ErrEmptyData, ErrSingularMatrix, ...) identify the root
// cause inside a ModelError chain. Recover converts panics into errors with
// stack traces attached, so an unexpected failure anywhere in the fit or
// predict path surfaces as a diagnosable error instead of killing the
// process.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// errPrefix is prepended to every error message produced by this package.
const errPrefix = "btcmacro: "

// Sentinel errors identifying root causes.
var (
	ErrEmptyData         = errors.New("empty data")
	ErrNotFitted         = errors.New("model is not fitted")
	ErrSingularMatrix    = errors.New("singular matrix")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ValueError indicates that an argument value is invalid.
type ValueError struct {
	Op      string // operation that rejected the value, e.g. "Regression.Fit"
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s%s: %s", errPrefix, e.Op, e.Message)
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

// DimensionError indicates mismatched matrix or vector dimensions.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 = rows/samples, 1 = columns/features
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s%s: dimension mismatch on %s: expected %d, got %d",
		errPrefix, e.Op, axis, e.Expected, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// NotFittedError indicates that a model method requiring a fitted model was
// called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s%s.%s: model is not fitted; call Fit first",
		errPrefix, e.ModelName, e.Method)
}

func (e *NotFittedError) Unwrap() error { return ErrNotFitted }

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

// ModelError wraps a sentinel cause with operation context.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s%s: %s", errPrefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s%s: %s: %v", errPrefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a ModelError wrapping cause.
func NewModelError(op, message string, cause error) *ModelError {
	return &ModelError{Op: op, Message: message, Err: cause}
}

// DataKind classifies pipeline-stage failures for presentation.
type DataKind string

const (
	// KindDataUnavailable: the dataset is missing or empty.
	KindDataUnavailable DataKind = "data_unavailable"
	// KindNoFeatures: none of the candidate feature columns exist.
	KindNoFeatures DataKind = "no_features"
	// KindEmptySelection: the user deselected every feature.
	KindEmptySelection DataKind = "empty_selection"
	// KindTrainingFailed: cleaning left no rows to fit on.
	KindTrainingFailed DataKind = "training_failed"
)

// DataError is a pipeline failure carrying a user-facing kind. The
// presentation layer maps Kind to an error code and HTTP status.
type DataError struct {
	Kind    DataKind
	Op      string
	Message string
	Details map[string]any
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s%s: %s", errPrefix, e.Op, e.Message)
}

// NewDataError creates a DataError of the given kind.
func NewDataError(kind DataKind, op, message string) *DataError {
	return &DataError{Kind: kind, Op: op, Message: message}
}

// WithDetails attaches structured detail values (e.g. available columns)
// for the presentation layer. Returns the receiver.
func (e *DataError) WithDetails(details map[string]any) *DataError {
	e.Details = details
	return e
}

// Recover converts a panic into an error assigned to *errp, with the
// panic's stack attached. Use in a defer at the top of exported methods:
//
//	func (m *Model) Fit(X, y mat.Matrix) (err error) {
//	    defer errors.Recover(&err, "Model.Fit")
//	    ...
//	}
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		var cause error
		if e, ok := r.(error); ok {
			cause = e
		} else {
			cause = errors.Newf("%v", r)
		}
		*errp = errors.Wrapf(errors.WithStackDepth(cause, 2), "%s%s: panic", errPrefix, op)
	}
}

// Trace renders err with its full diagnostic detail, including any stack
// traces captured by Recover or cockroachdb/errors wrapping.
func Trace(err error) string {
	return fmt.Sprintf("%+v", err)
}
