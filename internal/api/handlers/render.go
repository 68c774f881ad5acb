package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/domain/events"
	"github.com/gatherhall/server/internal/domain/users"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func renderUser(user *users.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

type eventResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Capacity          int       `json:"capacity"`
	Date              time.Time `json:"date"`
	Location          string    `json:"location"`
	Status            string    `json:"status"`
	CreatorID         string    `json:"creator_id"`
	ParticipantCount  int       `json:"participant_count"`
	IsFull            bool      `json:"is_full"`
	RemainingCapacity int       `json:"remaining_capacity"`
	IsPast            bool      `json:"is_past"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Participants []participantResponse `json:"participants,omitempty"`
}

func renderEvent(event *events.Event) eventResponse {
	return eventResponse{
		ID:                event.ID,
		Name:              event.Name,
		Description:       event.Description,
		Capacity:          event.Capacity,
		Date:              event.StartsAt,
		Location:          event.Location,
		Status:            string(event.Status),
		CreatorID:         event.CreatorID,
		ParticipantCount:  event.ParticipantCount,
		IsFull:            event.IsFull(),
		RemainingCapacity: event.RemainingCapacity(),
		IsPast:            event.IsPast(time.Now()),
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
	}
}

type participantResponse struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func renderParticipants(participants []events.Participant) []participantResponse {
	rendered := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		rendered = append(rendered, participantResponse{
			ID:       p.ID,
			EventID:  p.EventID,
			UserID:   p.UserID,
			JoinedAt: p.JoinedAt,
		})
	}
	return rendered
}

type logResponse struct {
	ID          string         `json:"id"`
	EventID     *string        `json:"event_id"`
	UserID      *string        `json:"user_id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   time.Time      `json:"timestamp"`
}

func renderLogs(logs []audit.Log) []logResponse {
	rendered := make([]logResponse, 0, len(logs))
	for _, entry := range logs {
		rendered = append(rendered, logResponse{
			ID:          entry.ID,
			EventID:     entry.EventID,
			UserID:      entry.UserID,
			Action:      string(entry.Action),
			Description: entry.Description,
			Metadata:    entry.Metadata,
			Timestamp:   entry.CreatedAt,
		})
	}
	return rendered
}
