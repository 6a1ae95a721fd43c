package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrInvalidTransition is returned when a delegation status transition is not legal.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict is returned when a concurrent update on the same parent
	// assignment could not be serialized. Callers may retry.
	ErrConflict = errors.New("concurrency conflict")
)

// InvalidTransitionError is returned when a delegation status transition is
// not allowed, carrying the offending pair.
type InvalidTransitionError struct {
	From DelegationStatus
	To   DelegationStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %q to %q", ErrInvalidTransition, e.From, e.To)
}

func (e InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
