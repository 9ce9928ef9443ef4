package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when the actor does not own the resource
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned when an operation requires an authenticated actor
	ErrUnauthorized = errors.New("authentication required")

	// ErrConflict is returned when there's a conflict (e.g., optimistic locking)
	ErrConflict = errors.New("conflict occurred")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// Validation failures that carry a user-facing reason. All of them match ErrInvalidInput.
var (
	ErrEmptyCart       = fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a whole number from 1 to %d", ErrInvalidInput, MaxQuantity)
	ErrInvalidVote     = fmt.Errorf("%w: vote must be 'yes' or 'no'", ErrInvalidInput)
	ErrDuplicateReview = fmt.Errorf("%w: you have already reviewed this movie, edit your review instead", ErrInvalidInput)
	ErrUnknownRegion   = fmt.Errorf("%w: unknown region", ErrInvalidInput)
)
