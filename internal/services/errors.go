package services

import (
	"errors"
)

// Failure taxonomy shared by every service. Handlers translate these
// into HTTP status codes; anything else is treated as a persistence
// failure and surfaces as a 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)
