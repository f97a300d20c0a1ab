// Package qerr defines the error taxonomy shared by every stage of query
// translation, execution and materialization.
//
// Every failure the engine raises on its own account is a *Error carrying a
// Code. Callers test for a category with Is, which unwraps with errors.As so
// that context added via fmt.Errorf("...: %w", err) does not hide the code.
// Failures that originate in a source and cannot be classified are returned
// unchanged and are never converted into an *Error.
package qerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes query errors.
type Code string

const (
	// ErrCodeInvalidRangeFormat indicates a cell address that is not 1-3
	// letters followed by 1-7 digits.
	ErrCodeInvalidRangeFormat Code = "INVALID_RANGE_FORMAT"

	// ErrCodeColumnOutOfRange indicates a column beyond the sheet limit (XFD)
	// or outside the configured range.
	ErrCodeColumnOutOfRange Code = "COLUMN_OUT_OF_RANGE"

	// ErrCodeArgumentRangeViolation indicates a mapped column that precedes
	// the range start, or a range whose start column follows its end column.
	ErrCodeArgumentRangeViolation Code = "ARGUMENT_RANGE_VIOLATION"

	// ErrCodeSourceNotFound indicates the named worksheet or table is absent.
	ErrCodeSourceNotFound Code = "SOURCE_NOT_FOUND"

	// ErrCodeUnknownColumnName indicates the query references a column the
	// table does not have.
	ErrCodeUnknownColumnName Code = "UNKNOWN_COLUMN_NAME"

	// ErrCodeStrictMappingViolation indicates an unmapped property or column
	// under a strict mapping policy.
	ErrCodeStrictMappingViolation Code = "STRICT_MAPPING_VIOLATION"

	// ErrCodeTypeCoercionFailure indicates a cell value that cannot convert
	// to the declared type of its target field.
	ErrCodeTypeCoercionFailure Code = "TYPE_COERCION_FAILURE"

	// ErrCodeEmptyResult indicates First or Single over an empty sequence.
	ErrCodeEmptyResult Code = "EMPTY_RESULT"

	// ErrCodeMultipleResults indicates Single over a sequence with more than
	// one element.
	ErrCodeMultipleResults Code = "MULTIPLE_RESULTS"

	// ErrCodeUnsupportedQuery indicates a query shape the translator rejects.
	ErrCodeUnsupportedQuery Code = "UNSUPPORTED_QUERY"
)

// Strict mapping violation kinds, stored under Details["kind"].
const (
	KindPropertyNotMapped = "property not mapped"
	KindColumnNotMapped   = "column not mapped"
)

// Error is a classified query failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Column names the offending column or property, when there is one.
	Column string

	// Details contains additional context (valid columns, violation kind, ...).
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// New creates an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidRangeFormat reports a malformed cell address.
func InvalidRangeFormat(text string) *Error {
	return &Error{
		Code:    ErrCodeInvalidRangeFormat,
		Message: fmt.Sprintf("invalid cell address %q: expected 1-3 letters followed by 1-7 digits", text),
	}
}

// ColumnOutOfRange reports a column letter outside the sheet or range limits.
func ColumnOutOfRange(column, reason string) *Error {
	return &Error{
		Code:    ErrCodeColumnOutOfRange,
		Message: fmt.Sprintf("column %q is out of range: %s", column, reason),
		Column:  column,
	}
}

// ArgumentRangeViolation reports a column that precedes the range start.
func ArgumentRangeViolation(column, rangeStart string) *Error {
	return &Error{
		Code:    ErrCodeArgumentRangeViolation,
		Message: fmt.Sprintf("column %q precedes range start column %q", column, rangeStart),
		Column:  column,
		Details: map[string]string{"range_start": rangeStart},
	}
}

// SourceNotFound reports a missing worksheet or table.
func SourceNotFound(table string, cause error) *Error {
	return &Error{
		Code:    ErrCodeSourceNotFound,
		Message: fmt.Sprintf("worksheet %q does not exist", table),
		Details: map[string]string{"table": table},
		Err:     cause,
	}
}

// UnknownColumnName reports referenced columns that the table lacks.
func UnknownColumnName(unknown, valid []string, cause error) *Error {
	return &Error{
		Code: ErrCodeUnknownColumnName,
		Message: fmt.Sprintf("column name(s) %s not found; valid columns: %s",
			quoteList(unknown), quoteList(valid)),
		Column: strings.Join(unknown, ", "),
		Details: map[string]string{
			"unknown": strings.Join(unknown, ", "),
			"valid":   strings.Join(valid, ", "),
		},
		Err: cause,
	}
}

// StrictMappingViolation reports unmapped properties or columns.
// kind is KindPropertyNotMapped or KindColumnNotMapped.
func StrictMappingViolation(kind string, names []string) *Error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &Error{
		Code:    ErrCodeStrictMappingViolation,
		Message: fmt.Sprintf("%s: %s", kind, quoteList(sorted)),
		Column:  strings.Join(sorted, ", "),
		Details: map[string]string{"kind": kind},
	}
}

// TypeCoercionFailure reports a value that cannot convert to a field type.
func TypeCoercionFailure(field string, value any, target string, cause error) *Error {
	return &Error{
		Code:    ErrCodeTypeCoercionFailure,
		Message: fmt.Sprintf("cannot convert %#v to %s for %q", value, target, field),
		Column:  field,
		Details: map[string]string{"target": target},
		Err:     cause,
	}
}

// EmptyResult reports an element operator applied to an empty sequence.
func EmptyResult(operator string) *Error {
	return &Error{
		Code:    ErrCodeEmptyResult,
		Message: fmt.Sprintf("%s: sequence contains no elements", operator),
	}
}

// MultipleResults reports Single over more than one element.
func MultipleResults(count int) *Error {
	return &Error{
		Code:    ErrCodeMultipleResults,
		Message: fmt.Sprintf("Single: sequence contains %d elements", count),
	}
}

// KindOf returns the strict mapping violation kind stored on err, or "".
func KindOf(err error) string {
	var qe *Error
	if errors.As(err, &qe) && qe.Details != nil {
		return qe.Details["kind"]
	}
	return ""
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
