// Package marmoterr defines the error kinds shared across the scheduler so
// callers can branch on failure mode without parsing messages.
package marmoterr

import "fmt"

// Kind classifies a scheduler error.
type Kind uint8

const (
	// InputInvalid marks a problem with the loaded Input itself: a
	// dangling index, an impossible constraint, a malformed record.
	InputInvalid Kind = iota

	// InvariantViolation marks a bug: the engine detected its own
	// bookkeeping (scores, penalty caches, placement logs) out of sync
	// with the schedule it is supposed to describe. Callers should treat
	// this as unrecoverable for the current run.
	InvariantViolation

	// HardUnsat marks a SAT encoding that is unsatisfiable even with zero
	// soft constraints enforced, meaning no valid schedule exists at all.
	HardUnsat

	// BudgetExhausted marks a search that ran out of its configured time
	// or iteration budget. It is not reported as an error value to
	// callers; the best schedule found so far is returned instead.
	BudgetExhausted

	// PersistenceFailure marks a failure reading or writing a schedule to
	// its backing store.
	PersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case InputInvalid:
		return "input invalid"
	case InvariantViolation:
		return "invariant violation"
	case HardUnsat:
		return "hard unsat"
	case BudgetExhausted:
		return "budget exhausted"
	case PersistenceFailure:
		return "persistence failure"
	default:
		return "unknown error"
	}
}

// Error is a scheduler error tagged with a Kind, letting callers recover
// from specific failure modes (e.g. retrying on PersistenceFailure) without
// string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
