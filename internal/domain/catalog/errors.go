package catalog

import "errors"

var (
	// ErrServiceNotFound indicates the service doesn't exist in the workspace.
	ErrServiceNotFound = errors.New("service not found")
	// ErrInvalidRules indicates a rejected reminder rule set.
	ErrInvalidRules = errors.New("invalid reminder rules")
)
