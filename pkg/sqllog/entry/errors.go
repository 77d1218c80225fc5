package entry

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a record to parse contains no lines.
var ErrEmptyInput = errors.New("empty input: no lines provided")

// InvalidHeaderError reports a first line that is not a valid record
// header line.
type InvalidHeaderError struct {
	Raw string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("invalid record header line: %q", e.Raw)
}

// LineTooShortError reports a header line shorter than the minimum a
// record header can occupy.
type LineTooShortError struct {
	Length int
	Raw    string
}

func (e *LineTooShortError) Error() string {
	return fmt.Sprintf("header line too short: %d bytes: %q", e.Length, e.Raw)
}

// MissingClosingParenError reports a header line whose metadata block is
// never closed.
type MissingClosingParenError struct {
	Raw string
}

func (e *MissingClosingParenError) Error() string {
	return fmt.Sprintf("missing closing parenthesis in metadata: %q", e.Raw)
}

// MetaFieldCountError reports a metadata block with the wrong number of
// space-separated fields. Count is the number of fields found.
type MetaFieldCountError struct {
	Count int
	Raw   string
}

func (e *MetaFieldCountError) Error() string {
	return fmt.Sprintf("insufficient metadata fields: got %d: %q", e.Count, e.Raw)
}

// ExecPointFormatError reports an execution-point field that does not
// have the EP[...] shape.
type ExecPointFormatError struct {
	Value string
	Raw   string
}

func (e *ExecPointFormatError) Error() string {
	return fmt.Sprintf("invalid EP format: expected 'EP[number]', got %q in %q", e.Value, e.Raw)
}

// ExecPointParseError reports an execution-point value that is not an
// unsigned 8-bit integer (non-numeric or out of the 0-255 range).
type ExecPointParseError struct {
	Value string
	Raw   string
}

func (e *ExecPointParseError) Error() string {
	return fmt.Sprintf("failed to parse EP number %q in %q", e.Value, e.Raw)
}

// FieldFormatError reports a metadata field whose prefix does not match
// the expected marker at its position.
type FieldFormatError struct {
	Expected string
	Actual   string
	Raw      string
}

func (e *FieldFormatError) Error() string {
	return fmt.Sprintf("invalid field format: expected %q, got %q in %q", e.Expected, e.Actual, e.Raw)
}

// IntParseError reports an integer field that failed to parse.
type IntParseError struct {
	Field string
	Value string
}

func (e *IntParseError) Error() string {
	return fmt.Sprintf("failed to parse %s as integer: %q", e.Field, e.Value)
}

// IndicatorError reports a missing or malformed indicator suffix. Callers
// extracting indicators treat any IndicatorError as "indicators absent";
// the type is surfaced so the reason can be inspected in diagnostics.
type IndicatorError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *IndicatorError) Error() string {
	return fmt.Sprintf("failed to parse indicators: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *IndicatorError) Unwrap() error {
	return e.Err
}
