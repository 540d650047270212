package domain

import "errors"

// Sentinel errors shared by repositories and services. The HTTP layer maps
// them to status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrSeatTaken         = errors.New("seat is already taken")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("invalid credentials")
)
