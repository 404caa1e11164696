package incidents

import "errors"

// Domain errors surfaced to handlers.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrInvalidType      = errors.New("invalid incident type")
	ErrInvalidStatus    = errors.New("invalid incident status")
	ErrInvalidImpact    = errors.New("invalid incident impact")
)
