package entity

import "errors"

// Domain sentinels. Services wrap them with context; handlers dispatch on
// errors.Is to pick the HTTP status.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrDuplicate        = errors.New("duplicate")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotAssociated    = errors.New("not associated")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrBadEvent         = errors.New("malformed event")
	ErrInvalidState     = errors.New("invalid state")
)
