package errors

import "fmt"

// ValidationError rejects a request up front: a missing field or a
// value outside one of the closed enums.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidCardReferenceError means a card id could not be resolved to an
// owning user.
type InvalidCardReferenceError struct {
	CardID string
}

func (e *InvalidCardReferenceError) Error() string {
	return fmt.Sprintf("card %q cannot be resolved", e.CardID)
}

// InvalidCardReference builds an InvalidCardReferenceError.
func InvalidCardReference(cardID string) error {
	return &InvalidCardReferenceError{CardID: cardID}
}

// NotFoundError covers lookups of records that do not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps storage failures. Propagated as-is; retry
// policy belongs to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err with the failing operation name.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
