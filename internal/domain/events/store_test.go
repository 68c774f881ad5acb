package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/domain/users"
)

// fakeState is the shared backing data for the in-memory store. WithTx
// clones it, runs the callback against the clone, and swaps the clone in
// only on success, mirroring the commit/rollback contract.
type fakeState struct {
	events       map[string]Event
	participants []Participant
	logs         []audit.Log
	sequence     int

	appendErr error
}

func newFakeState() *fakeState {
	return &fakeState{events: make(map[string]Event)}
}

func (s *fakeState) clone() *fakeState {
	clone := &fakeState{
		events:       make(map[string]Event, len(s.events)),
		participants: append([]Participant(nil), s.participants...),
		logs:         append([]audit.Log(nil), s.logs...),
		sequence:     s.sequence,
		appendErr:    s.appendErr,
	}
	for id, event := range s.events {
		clone.events[id] = event
	}
	return clone
}

func (s *fakeState) countParticipants(eventID string) int {
	count := 0
	for _, p := range s.participants {
		if p.EventID == eventID {
			count++
		}
	}
	return count
}

type fakeStore struct {
	state *fakeState
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: newFakeState()}
}

func (s *fakeStore) Events() Repository {
	return &fakeEventsRepo{state: s.state}
}

func (s *fakeStore) Logs() audit.Repository {
	return &fakeLogsRepo{state: s.state}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(context.Context, Store) error) error {
	clone := s.state.clone()
	if err := fn(ctx, &fakeStore{state: clone}); err != nil {
		return err
	}
	*s.state = *clone
	return nil
}

type fakeEventsRepo struct {
	state *fakeState
}

func (r *fakeEventsRepo) List(ctx context.Context, filters Filters, page Pagination) (ListResult, error) {
	var matched []Event
	for _, event := range r.state.events {
		if filters.Status != "" && event.Status != filters.Status {
			continue
		}
		if filters.CreatorID != "" && event.CreatorID != filters.CreatorID {
			continue
		}
		if filters.JoinedUserID != "" && !r.isParticipant(event.ID, filters.JoinedUserID) {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(event.Name), strings.ToLower(filters.Query)) {
			continue
		}
		event.ParticipantCount = r.state.countParticipants(event.ID)
		matched = append(matched, event)
	}
	sort.Slice(matched, func(i, j int) bool {
		if filters.Descending {
			return matched[i].StartsAt.After(matched[j].StartsAt)
		}
		return matched[i].StartsAt.Before(matched[j].StartsAt)
	})

	total := len(matched)
	if page.Offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[page.Offset:]
	}
	if page.Limit > 0 && len(matched) > page.Limit {
		matched = matched[:page.Limit]
	}
	return ListResult{Events: matched, Total: total}, nil
}

func (r *fakeEventsRepo) isParticipant(eventID, userID string) bool {
	for _, p := range r.state.participants {
		if p.EventID == eventID && p.UserID == userID {
			return true
		}
	}
	return false
}

func (r *fakeEventsRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	event, ok := r.state.events[id]
	if !ok {
		return nil, NotFoundError{Resource: "event"}
	}
	event.ParticipantCount = r.state.countParticipants(id)
	return &event, nil
}

func (r *fakeEventsRepo) GetByIDForUpdate(ctx context.Context, id string) (*Event, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeEventsRepo) Create(ctx context.Context, record CreateRecord) (*Event, error) {
	now := time.Now()
	event := Event{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		Capacity:    record.Capacity,
		StartsAt:    record.StartsAt,
		Location:    record.Location,
		Status:      record.Status,
		CreatorID:   record.CreatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.state.events[event.ID] = event
	return &event, nil
}

func (r *fakeEventsRepo) Update(ctx context.Context, id string, record UpdateRecord) (*Event, error) {
	event, ok := r.state.events[id]
	if !ok {
		return nil, NotFoundError{Resource: "event"}
	}
	if record.Name != nil {
		event.Name = *record.Name
	}
	if record.Description != nil {
		event.Description = *record.Description
	}
	if record.Capacity != nil {
		event.Capacity = *record.Capacity
	}
	if record.StartsAt != nil {
		event.StartsAt = *record.StartsAt
	}
	if record.Location != nil {
		event.Location = *record.Location
	}
	if record.Status != nil {
		event.Status = *record.Status
	}
	event.UpdatedAt = time.Now()
	r.state.events[id] = event
	event.ParticipantCount = r.state.countParticipants(id)
	return &event, nil
}

func (r *fakeEventsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.state.events[id]; !ok {
		return NotFoundError{Resource: "event"}
	}
	delete(r.state.events, id)
	return nil
}

func (r *fakeEventsRepo) CountOpenByCreator(ctx context.Context, creatorID string) (int, error) {
	count := 0
	for _, event := range r.state.events {
		if event.CreatorID == creatorID && event.Status == StatusOpen {
			count++
		}
	}
	return count, nil
}

func (r *fakeEventsRepo) Participants(ctx context.Context, eventID string) ([]Participant, error) {
	var matched []Participant
	for _, p := range r.state.participants {
		if p.EventID == eventID {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *fakeEventsRepo) GetParticipant(ctx context.Context, eventID, userID string) (*Participant, error) {
	for _, p := range r.state.participants {
		if p.EventID == eventID && p.UserID == userID {
			participant := p
			return &participant, nil
		}
	}
	return nil, NotFoundError{Resource: "participant"}
}

func (r *fakeEventsRepo) AddParticipant(ctx context.Context, record ParticipantRecord) (*Participant, error) {
	for _, p := range r.state.participants {
		if p.EventID == record.EventID && p.UserID == record.UserID {
			return nil, ConflictError{Message: "already registered for this event"}
		}
	}
	participant := Participant{
		ID:       record.ID,
		EventID:  record.EventID,
		UserID:   record.UserID,
		JoinedAt: time.Now(),
	}
	r.state.participants = append(r.state.participants, participant)
	return &participant, nil
}

func (r *fakeEventsRepo) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	for i, p := range r.state.participants {
		if p.EventID == eventID && p.UserID == userID {
			r.state.participants = append(r.state.participants[:i], r.state.participants[i+1:]...)
			return nil
		}
	}
	return NotFoundError{Resource: "participant"}
}

type fakeLogsRepo struct {
	state *fakeState
}

func (r *fakeLogsRepo) Append(ctx context.Context, record audit.CreateRecord) (*audit.Log, error) {
	if r.state.appendErr != nil {
		return nil, r.state.appendErr
	}
	entry := audit.Log{
		ID:          record.ID,
		EventID:     record.EventID,
		UserID:      record.UserID,
		Action:      record.Action,
		Description: record.Description,
		Metadata:    record.Metadata,
		CreatedAt:   time.Now(),
	}
	r.state.logs = append(r.state.logs, entry)
	return &entry, nil
}

func (r *fakeLogsRepo) List(ctx context.Context, scope audit.Scope, filters audit.Filters) ([]audit.Log, error) {
	var matched []audit.Log
	for _, entry := range r.state.logs {
		if !r.inScope(scope, entry) {
			continue
		}
		if filters.EventID != "" && (entry.EventID == nil || *entry.EventID != filters.EventID) {
			continue
		}
		if filters.UserID != "" && (entry.UserID == nil || *entry.UserID != filters.UserID) {
			continue
		}
		if filters.Action != "" && entry.Action != filters.Action {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

func (r *fakeLogsRepo) inScope(scope audit.Scope, entry audit.Log) bool {
	switch scope.Kind {
	case audit.ScopeAll:
		return true
	case audit.ScopeCreatedEvents:
		if entry.EventID == nil {
			return false
		}
		event, ok := r.state.events[*entry.EventID]
		return ok && event.CreatorID == scope.UserID
	case audit.ScopeJoinedEvents:
		if entry.EventID == nil {
			return false
		}
		for _, p := range r.state.participants {
			if p.EventID == *entry.EventID && p.UserID == scope.UserID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (s *fakeStore) nextID() string {
	s.state.sequence++
	return fmt.Sprintf("01TESTULID%016d", s.state.sequence)
}

func testUser(id string, role users.Role) *users.User {
	return &users.User{
		ID:    id,
		Email: id + "@example.com",
		Name:  "User " + id,
		Role:  role,
	}
}

func seedEvent(store *fakeStore, creator *users.User, status Status, capacity int) *Event {
	event := Event{
		ID:        store.nextID(),
		Name:      "Seeded Event",
		Capacity:  capacity,
		StartsAt:  time.Now().Add(48 * time.Hour),
		Location:  "Main Hall",
		Status:    status,
		CreatorID: creator.ID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	store.state.events[event.ID] = event
	stored := event
	return &stored
}
