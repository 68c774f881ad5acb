// Package events holds the event and participant entities, the
// authorization predicates gating their mutation, and the orchestration
// service that executes every lifecycle operation as a single transaction.
package events

import (
	"strings"
	"time"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
	StatusCanceled Status = "canceled"
)

func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	case StatusCanceled:
		return StatusCanceled, nil
	default:
		return "", ValidationError{Field: "status", Message: "must be open, closed, or canceled"}
	}
}

type Event struct {
	ID          string
	Name        string
	Description string
	Capacity    int
	StartsAt    time.Time
	Location    string
	Status      Status
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// ParticipantCount is derived from the participants table at read
	// time, never stored on the event row. Write-path checks recompute
	// it inside the transaction.
	ParticipantCount int
}

func (e *Event) IsFull() bool {
	return e.ParticipantCount >= e.Capacity
}

func (e *Event) RemainingCapacity() int {
	remaining := e.Capacity - e.ParticipantCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (e *Event) IsPast(now time.Time) bool {
	return e.StartsAt.Before(now)
}

// AcceptsJoins reports whether the event status permits new participants.
func (e *Event) AcceptsJoins() bool {
	return e.Status == StatusOpen
}

type Participant struct {
	ID       string
	EventID  string
	UserID   string
	JoinedAt time.Time
}
