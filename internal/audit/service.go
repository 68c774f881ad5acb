package audit

import (
	"context"
	"fmt"

	"github.com/gatherhall/server/internal/domain/ids"
	"github.com/gatherhall/server/internal/domain/users"
	"github.com/rs/zerolog"
)

// Service reads the ledger with per-role scoping. Appends go through the
// repository inside the mutating transaction; Record is the helper the
// orchestration layer uses for that.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// ScopeForActor maps an actor's role to a read scope. Anonymous callers
// are denied outright.
func ScopeForActor(actor *users.User) (Scope, error) {
	if actor == nil {
		return Scope{}, ErrUnauthenticated
	}
	switch actor.Role {
	case users.RoleAdmin:
		return Scope{Kind: ScopeAll}, nil
	case users.RoleEventCreator:
		return Scope{Kind: ScopeCreatedEvents, UserID: actor.ID}, nil
	default:
		return Scope{Kind: ScopeJoinedEvents, UserID: actor.ID}, nil
	}
}

// List returns ledger entries visible to the actor, newest first.
func (s *Service) List(ctx context.Context, actor *users.User, filters Filters) ([]Log, error) {
	scope, err := ScopeForActor(actor)
	if err != nil {
		return nil, err
	}
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	return s.repo.List(ctx, scope, filters)
}

// Record appends an entry through the given repository (normally the
// transactional one) and mirrors it to the structured log.
func Record(ctx context.Context, repo Repository, logger zerolog.Logger, record CreateRecord) (*Log, error) {
	if record.ID == "" {
		id, err := ids.NewULID()
		if err != nil {
			return nil, fmt.Errorf("mint log id: %w", err)
		}
		record.ID = id
	}
	if _, err := ParseAction(string(record.Action)); err != nil {
		return nil, err
	}

	entry, err := repo.Append(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("append audit log: %w", err)
	}

	event := logger.Info().Str("action", string(entry.Action))
	if entry.EventID != nil {
		event = event.Str("event_id", *entry.EventID)
	}
	if entry.UserID != nil {
		event = event.Str("user_id", *entry.UserID)
	}
	event.Fields(map[string]any{"metadata": entry.Metadata}).Msg(entry.Description)

	return entry, nil
}
