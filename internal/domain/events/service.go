package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/config"
	"github.com/gatherhall/server/internal/domain/ids"
	"github.com/gatherhall/server/internal/domain/users"
	"github.com/gatherhall/server/internal/sanitize"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service coordinates event lifecycle operations. Every mutation runs as
// one transaction covering the entity change and its ledger entry; a
// failure in either rolls back both.
type Service struct {
	store    Store
	cfg      config.EventsConfig
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewService(store Store, cfg config.EventsConfig, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		cfg:      cfg,
		logger:   logger.With().Str("component", "events").Logger(),
		validate: validator.New(),
	}
}

type CreateParams struct {
	Name        string    `validate:"required,max=255"`
	Description string    `validate:"required"`
	Capacity    int       `validate:"min=0,max=1000000"`
	StartsAt    time.Time `validate:"required"`
	Location    string    `validate:"required,max=255"`
	Status      Status
}

type UpdateParams struct {
	Name        *string
	Description *string
	Capacity    *int
	StartsAt    *time.Time
	Location    *string
	Status      *Status
}

// Create persists a new event owned by the actor. Capacity defaults to
// the configured value when left at zero. Non-admin creators are limited
// to the configured number of simultaneously open events; the quota
// counts only status=open events and is rechecked inside the transaction.
func (s *Service) Create(ctx context.Context, actor *users.User, params CreateParams) (*Event, error) {
	if !CanCreateEvent(actor) {
		return nil, AuthorizationError{Reason: "only admins and event creators may create events"}
	}

	params.Name = sanitize.Text(strings.TrimSpace(params.Name))
	params.Description = sanitize.HTML(params.Description)
	params.Location = sanitize.Text(strings.TrimSpace(params.Location))
	if err := s.validate.Struct(params); err != nil {
		return nil, asValidationError(err)
	}

	if params.Capacity == 0 {
		params.Capacity = s.cfg.DefaultCapacity
	}
	if params.Capacity <= 0 {
		return nil, ValidationError{Field: "capacity", Message: "must be a positive integer"}
	}

	status := params.Status
	if status == "" {
		status = StatusOpen
	} else if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint event id: %w", err)
	}

	var created *Event
	err = s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		if status == StatusOpen && !actor.Role.IsAdmin() {
			open, err := tx.Events().CountOpenByCreator(ctx, actor.ID)
			if err != nil {
				return err
			}
			if open >= s.cfg.MaxOpenEvents {
				return ValidationError{
					Field:   "quota",
					Message: fmt.Sprintf("creator already has %d open events (maximum %d)", open, s.cfg.MaxOpenEvents),
				}
			}
		}

		created, err = tx.Events().Create(ctx, CreateRecord{
			ID:          id,
			Name:        params.Name,
			Description: params.Description,
			Capacity:    params.Capacity,
			StartsAt:    params.StartsAt,
			Location:    params.Location,
			Status:      status,
			CreatorID:   actor.ID,
		})
		if err != nil {
			return err
		}

		_, err = audit.Record(ctx, tx.Logs(), s.logger, audit.CreateRecord{
			EventID:     &created.ID,
			UserID:      &actor.ID,
			Action:      audit.ActionCreate,
			Description: "event created",
			Metadata:    map[string]any{"event_id": created.ID, "event_name": created.Name},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies partial changes. A capacity change may not drop below
// the current participant count. A status transition is recorded as a
// status_change ledger entry; any other change set as update.
func (s *Service) Update(ctx context.Context, actor *users.User, id string, params UpdateParams) (*Event, error) {
	var updated *Event
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		event, err := tx.Events().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !CanModifyEvent(actor, event) {
			return AuthorizationError{Reason: "only the creator or an admin may modify this event"}
		}

		record, changed, err := buildUpdate(event, params)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			updated = event
			return nil
		}

		updated, err = tx.Events().Update(ctx, id, record)
		if err != nil {
			return err
		}

		action := audit.ActionUpdate
		description := "event updated"
		metadata := map[string]any{
			"event_id":       updated.ID,
			"event_name":     updated.Name,
			"updated_fields": changed,
		}
		if record.Status != nil {
			action = audit.ActionStatusChange
			description = "event status changed"
			metadata["status_from"] = string(event.Status)
			metadata["status_to"] = string(*record.Status)
		}

		_, err = audit.Record(ctx, tx.Logs(), s.logger, audit.CreateRecord{
			EventID:     &updated.ID,
			UserID:      &actor.ID,
			Action:      action,
			Description: description,
			Metadata:    metadata,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an event that has no participants. The ledger entry is
// written with a nil event reference since the row is gone, with the
// captured identity preserved in metadata.
func (s *Service) Delete(ctx context.Context, actor *users.User, id string) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		event, err := tx.Events().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !CanModifyEvent(actor, event) {
			return AuthorizationError{Reason: "only the creator or an admin may delete this event"}
		}
		if event.ParticipantCount > 0 {
			return ValidationError{Field: "participants", Message: "cannot delete an event with participants"}
		}

		metadata := map[string]any{"event_id": event.ID, "event_name": event.Name}
		if err := tx.Events().Delete(ctx, id); err != nil {
			return err
		}

		_, err = audit.Record(ctx, tx.Logs(), s.logger, audit.CreateRecord{
			EventID:     nil,
			UserID:      &actor.ID,
			Action:      audit.ActionDelete,
			Description: "event deleted",
			Metadata:    metadata,
		})
		return err
	})
}

// Join registers the actor as a participant. Status, capacity, and
// duplicate checks all run against the row-locked event inside the
// transaction; the unique (event, user) constraint backstops the
// duplicate check and surfaces as ConflictError.
func (s *Service) Join(ctx context.Context, actor *users.User, eventID string) (*Participant, error) {
	if actor == nil {
		return nil, AuthorizationError{Reason: "authentication required to join events"}
	}

	var participant *Participant
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		event, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.AcceptsJoins() {
			return ValidationError{Field: "status", Message: "event is not open for registration"}
		}
		if event.IsFull() {
			return ValidationError{Field: "capacity", Message: "event has reached its capacity"}
		}

		existing, err := tx.Events().GetParticipant(ctx, event.ID, actor.ID)
		var notFound NotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return err
		}
		if existing != nil {
			return ValidationError{Field: "participant", Message: "already registered for this event"}
		}

		id, err := ids.NewULID()
		if err != nil {
			return fmt.Errorf("mint participant id: %w", err)
		}
		participant, err = tx.Events().AddParticipant(ctx, ParticipantRecord{
			ID:      id,
			EventID: event.ID,
			UserID:  actor.ID,
		})
		if err != nil {
			return err
		}

		_, err = audit.Record(ctx, tx.Logs(), s.logger, audit.CreateRecord{
			EventID:     &event.ID,
			UserID:      &actor.ID,
			Action:      audit.ActionJoin,
			Description: "user joined event",
			Metadata: map[string]any{
				"event_id":       event.ID,
				"event_name":     event.Name,
				"participant_id": participant.ID,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// Leave removes the actor's participation row.
func (s *Service) Leave(ctx context.Context, actor *users.User, eventID string) error {
	if actor == nil {
		return AuthorizationError{Reason: "authentication required to leave events"}
	}

	return s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		event, err := tx.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		participant, err := tx.Events().GetParticipant(ctx, event.ID, actor.ID)
		if err != nil {
			return err
		}
		if !CanManageParticipation(actor, participant) {
			return AuthorizationError{Reason: "cannot manage another user's participation"}
		}

		if err := tx.Events().RemoveParticipant(ctx, event.ID, actor.ID); err != nil {
			return err
		}

		_, err = audit.Record(ctx, tx.Logs(), s.logger, audit.CreateRecord{
			EventID:     &event.ID,
			UserID:      &actor.ID,
			Action:      audit.ActionLeave,
			Description: "user left event",
			Metadata: map[string]any{
				"event_id":       event.ID,
				"event_name":     event.Name,
				"participant_id": participant.ID,
			},
		})
		return err
	})
}

// Get returns one event. Anonymous callers receive NotFound for non-open
// events rather than an authorization error, so existence is not leaked.
func (s *Service) Get(ctx context.Context, actor *users.User, id string) (*Event, error) {
	event, err := s.store.Events().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanReadEvent(actor, event) {
		return nil, NotFoundError{Resource: "event"}
	}
	return event, nil
}

// List returns events matching the filters. Anonymous callers only ever
// see open events regardless of the requested status filter.
func (s *Service) List(ctx context.Context, actor *users.User, filters Filters, page Pagination) (ListResult, error) {
	if actor == nil {
		filters.Status = StatusOpen
		filters.Mine = false
		filters.Joined = false
	}
	if filters.Mine {
		filters.CreatorID = actor.ID
	}
	if filters.Joined {
		filters.JoinedUserID = actor.ID
	}
	if page.Limit <= 0 {
		page.Limit = 50
	}
	return s.store.Events().List(ctx, filters, page)
}

// Participants returns the roster, visible to the creator and admins.
func (s *Service) Participants(ctx context.Context, actor *users.User, eventID string) ([]Participant, error) {
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !CanViewParticipants(actor, event) {
		return nil, AuthorizationError{Reason: "only the creator or an admin may view participants"}
	}
	return s.store.Events().Participants(ctx, eventID)
}

func buildUpdate(event *Event, params UpdateParams) (UpdateRecord, []string, error) {
	var record UpdateRecord
	var changed []string

	if params.Name != nil {
		name := sanitize.Text(strings.TrimSpace(*params.Name))
		if name == "" {
			return record, nil, ValidationError{Field: "name", Message: "must not be empty"}
		}
		if name != event.Name {
			record.Name = &name
			changed = append(changed, "name")
		}
	}
	if params.Description != nil {
		description := sanitize.HTML(*params.Description)
		if description != event.Description {
			record.Description = &description
			changed = append(changed, "description")
		}
	}
	if params.Capacity != nil && *params.Capacity != event.Capacity {
		if *params.Capacity <= 0 {
			return record, nil, ValidationError{Field: "capacity", Message: "must be a positive integer"}
		}
		if *params.Capacity < event.ParticipantCount {
			return record, nil, ValidationError{
				Field:   "capacity",
				Message: fmt.Sprintf("cannot be lower than the current participant count (%d)", event.ParticipantCount),
			}
		}
		record.Capacity = params.Capacity
		changed = append(changed, "capacity")
	}
	if params.StartsAt != nil && !params.StartsAt.Equal(event.StartsAt) {
		record.StartsAt = params.StartsAt
		changed = append(changed, "date")
	}
	if params.Location != nil {
		location := sanitize.Text(strings.TrimSpace(*params.Location))
		if location != event.Location {
			record.Location = &location
			changed = append(changed, "location")
		}
	}
	if params.Status != nil && *params.Status != event.Status {
		status, err := ParseStatus(string(*params.Status))
		if err != nil {
			return record, nil, err
		}
		record.Status = &status
		changed = append(changed, "status")
	}

	return record, changed, nil
}

func asValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: "failed " + fe.Tag() + " validation",
		}
	}
	return ValidationError{Message: err.Error()}
}
