package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input to a constructor or mutator.
// It is never retryable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NotFoundError reports an absent aggregate.
type NotFoundError struct {
	AggregateType string
	ID            string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.AggregateType, e.ID)
}

// InsufficientStockError reports a failed availability check.
// Not retryable for the current attempt; stock may change later.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ConcurrentModificationError signals a version conflict during persistence.
// The caller should reload the aggregate, redo the operation and commit again.
type ConcurrentModificationError struct {
	AggregateID string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("aggregate %s was modified concurrently", e.AggregateID)
}

// TransitionError reports an attempt to follow a status edge that does not exist.
type TransitionError struct {
	AggregateType string
	From          string
	To            string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.AggregateType, e.From, e.To)
}

// IsConcurrentModification reports whether err is a version conflict.
func IsConcurrentModification(err error) bool {
	var cme *ConcurrentModificationError
	return errors.As(err, &cme)
}

// IsNotFound reports whether err is an absent-aggregate error.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
