package events

import "fmt"

// ValidationError rejects malformed or out-of-range input before any
// mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AuthorizationError means the actor lacks the role or ownership relation
// an operation requires. Kept distinct from ValidationError so callers can
// tell "fix your input" from "you can't do this".
type AuthorizationError struct {
	Reason string
}

func (e AuthorizationError) Error() string {
	if e.Reason == "" {
		return "not authorized"
	}
	return e.Reason
}

// NotFoundError covers missing events and missing participation rows.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

// ConflictError is a race-induced violation surfaced by a storage
// constraint, translated at the repository boundary. Raw driver errors
// never reach callers.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string {
	if e.Message == "" {
		return "conflict"
	}
	return e.Message
}
