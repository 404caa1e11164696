package catalog

import "errors"

// Domain errors surfaced to handlers.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrInvalidStatus   = errors.New("invalid service status")
)
