package events

import (
	"context"
	"time"

	"github.com/gatherhall/server/internal/audit"
)

type CreateRecord struct {
	ID          string
	Name        string
	Description string
	Capacity    int
	StartsAt    time.Time
	Location    string
	Status      Status
	CreatorID   string
}

// UpdateRecord applies partial changes; nil fields are left untouched.
type UpdateRecord struct {
	Name        *string
	Description *string
	Capacity    *int
	StartsAt    *time.Time
	Location    *string
	Status      *Status
}

type ParticipantRecord struct {
	ID      string
	EventID string
	UserID  string
}

type Repository interface {
	List(ctx context.Context, filters Filters, page Pagination) (ListResult, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate takes a row-level lock on the event and recomputes
	// the participant count inside the calling transaction. It is the
	// anchor of the check-then-insert join sequence.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, record CreateRecord) (*Event, error)
	Update(ctx context.Context, id string, record UpdateRecord) (*Event, error)
	Delete(ctx context.Context, id string) error
	CountOpenByCreator(ctx context.Context, creatorID string) (int, error)

	Participants(ctx context.Context, eventID string) ([]Participant, error)
	GetParticipant(ctx context.Context, eventID, userID string) (*Participant, error)
	AddParticipant(ctx context.Context, record ParticipantRecord) (*Participant, error)
	RemoveParticipant(ctx context.Context, eventID, userID string) error
}

// Store groups the repositories an orchestration transaction touches.
// WithTx runs fn against a transactional view of the store; if fn returns
// an error nothing is persisted, including ledger entries.
type Store interface {
	Events() Repository
	Logs() audit.Repository
	WithTx(ctx context.Context, fn func(context.Context, Store) error) error
}

type ListResult struct {
	Events []Event
	Total  int
}
