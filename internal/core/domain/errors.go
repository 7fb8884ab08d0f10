package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// ValidationError reports missing or malformed input. Fields lists every
// offending field when more than one is involved.
type ValidationError struct {
	Field  string
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Fields) > 0:
		return fmt.Sprintf("validation failed: %s (%s)", e.Reason, strings.Join(e.Fields, ", "))
	case e.Field != "":
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
	default:
		return "validation failed: " + e.Reason
	}
}

// ConflictError reports a duplicate unique key (email, username, user id).
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// PermissionDeniedError reports a policy rejection. It always carries the
// actor's role and what was attempted so callers and tests can assert on the
// decision, never on a generic failure.
type PermissionDeniedError struct {
	ActorRole  Role
	TargetRole Role      // set for user-tier decisions
	GroupType  GroupType // set for group-tier decisions
	Operation  string
}

func (e *PermissionDeniedError) Error() string {
	target := string(e.TargetRole)
	if target == "" {
		target = string(e.GroupType) + " group"
	}
	return fmt.Sprintf("role %s is not permitted to %s %s", e.ActorRole, e.Operation, target)
}

// NotFoundError reports a reference that did not resolve to an active record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConsistencyError reports a multi-step membership mutation that partially
// succeeded: the group-side write landed but the user-side back-reference
// write did not. Surfaced distinctly so operators can reconcile instead of
// blindly retrying.
type ConsistencyError struct {
	Operation string
	GroupID   string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s on group %s partially applied: %v", e.Operation, e.GroupID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
