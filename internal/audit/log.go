// Package audit is the append-only lifecycle ledger. Entries are written in
// the same transaction as the mutation they describe and are never updated
// or deleted; no such operations exist on the repository contract.
package audit

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionJoin         Action = "join"
	ActionLeave        Action = "leave"
	ActionStatusChange Action = "status_change"
)

func ParseAction(value string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(value))) {
	case ActionCreate:
		return ActionCreate, nil
	case ActionUpdate:
		return ActionUpdate, nil
	case ActionDelete:
		return ActionDelete, nil
	case ActionJoin:
		return ActionJoin, nil
	case ActionLeave:
		return ActionLeave, nil
	case ActionStatusChange:
		return ActionStatusChange, nil
	default:
		return "", ErrInvalidAction
	}
}

// Log is a single immutable ledger entry. Event and user references are
// weak: both survive deletion of the referenced row as NULLs, with the
// metadata preserving the identity captured at write time.
type Log struct {
	ID          string
	EventID     *string
	UserID      *string
	Action      Action
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

var (
	ErrInvalidAction   = errors.New("invalid audit action")
	ErrUnauthenticated = errors.New("authentication required to view logs")
)

type CreateRecord struct {
	ID          string
	EventID     *string
	UserID      *string
	Action      Action
	Description string
	Metadata    map[string]any
}

// ScopeKind restricts which ledger entries an actor may read.
type ScopeKind int

const (
	// ScopeAll grants unrestricted read access (admins).
	ScopeAll ScopeKind = iota
	// ScopeCreatedEvents limits reads to logs of events the actor created.
	ScopeCreatedEvents
	// ScopeJoinedEvents limits reads to logs of events the actor
	// participates in.
	ScopeJoinedEvents
)

type Scope struct {
	Kind   ScopeKind
	UserID string
}

type Filters struct {
	EventID string
	UserID  string
	Action  Action
	Limit   int
	Offset  int
}

// Repository is deliberately append-and-read only.
type Repository interface {
	Append(ctx context.Context, record CreateRecord) (*Log, error)
	List(ctx context.Context, scope Scope, filters Filters) ([]Log, error)
}
