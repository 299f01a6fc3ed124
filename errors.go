package udbq

import (
	"errors"
	"fmt"
)

// Standard sentinel errors.
var (
	// ErrUsage is returned when the builder or executor API is misused,
	// e.g. mixing a textual predicate with field conditions, or rendering
	// an UPDATE with no assignments. It signals a construction bug in the
	// caller, not a runtime data issue.
	ErrUsage = errors.New("udbq: invalid usage")

	// ErrClosed is returned when an operation is attempted on a closed
	// database handle or transaction.
	ErrClosed = errors.New("udbq: closed")
)

// UsageError reports programmer misuse of the package API.
type UsageError struct {
	msg string
}

// Usagef returns a new UsageError with a formatted message.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// Error returns the error string.
func (e *UsageError) Error() string {
	return "udbq: " + e.msg
}

// Is reports whether the target error matches UsageError.
// This allows errors.Is(usageErr, ErrUsage) to return true.
func (e *UsageError) Is(err error) bool {
	return err == ErrUsage
}

// IsUsage returns true if the error is a UsageError.
func IsUsage(err error) bool {
	if err == nil {
		return false
	}
	var e *UsageError
	return errors.As(err, &e) || errors.Is(err, ErrUsage)
}

// Errors raised by the underlying database driver are surfaced unchanged,
// wrapped only for context with %w. The package never interprets, retries
// or swallows them; use the classification helpers in dialect/sql to
// inspect constraint violations.
