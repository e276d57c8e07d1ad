package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Input errors
	ErrValidation     = errors.New("validation failed")
	ErrDuplicateEmail = errors.New("email is already registered for this event")

	// Ledger errors
	ErrInsufficientPot     = errors.New("insufficient currency in pot")
	ErrInsufficientBalance = errors.New("insufficient player balance")

	// Lookup errors
	ErrEventNotFound  = errors.New("event not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrAdminNotFound  = errors.New("admin not found")

	// Persistence errors
	ErrStorage = errors.New("storage unavailable")
)

// ValidationError reports a rejected input field.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation as the error's kind
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a failure of the persistence backend.
// It matches ErrStorage under errors.Is and unwraps to the cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage as the error's kind
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// WrapStorage wraps err as a StorageError for op.
// Nil errors, domain errors and errors that are already storage errors pass through unchanged.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || isDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrDuplicateEmail,
		ErrInsufficientPot,
		ErrInsufficientBalance,
		ErrEventNotFound,
		ErrPlayerNotFound,
		ErrAdminNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
