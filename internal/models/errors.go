package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrDuplicate indicates a row violating a unique constraint (IBAN, card number, GUID, idempotency key)
	ErrDuplicate = errors.New("duplicate")

	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrUnknownMovementType indicates a stored payload whose discriminant is not recognised
	ErrUnknownMovementType = errors.New("unknown movement type")
)
