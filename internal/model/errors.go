package model

import (
	"errors"
	"fmt"
	"strings"
)

// Causes wrapped by DataError.
var (
	ErrMissingColumn   = errors.New("required column missing")
	ErrBadAmount       = errors.New("amount is not a number")
	ErrAmbiguousAmount = errors.New("amount separator is ambiguous, set the decimal style to comma or dot")
	ErrNonFinite       = errors.New("amount is not finite")
	ErrEmptyAccount    = errors.New("account is empty")
	ErrBadDate         = errors.New("unparseable posting date")
)

// DataError reports malformed input: a missing required column or a value
// that cannot take part in a sum. It is never retried or masked.
type DataError struct {
	Op     string // "read", "aggregate", ...
	Source string // file path, when known
	Row    int    // 1-based record number, 0 when not row specific
	Field  string
	Value  string
	Err    error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DataError) Unwrap() error { return e.Err }

// IsDataError reports whether err is or wraps a *DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
