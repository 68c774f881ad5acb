package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gatherhall/server/internal/api/middleware"
	"github.com/gatherhall/server/internal/api/problem"
	"github.com/gatherhall/server/internal/domain/events"
	"github.com/gatherhall/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type listEventsResponse struct {
	Items []eventResponse `json:"items"`
	Total int             `json:"total"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	filters, page, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), actor, filters, page)
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	items := make([]eventResponse, 0, len(result.Events))
	for i := range result.Events {
		items = append(items, renderEvent(&result.Events[i]))
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Items: items, Total: result.Total})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	event, err := h.Service.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	response := renderEvent(event)
	if events.CanViewParticipants(actor, event) {
		participants, err := h.Service.Participants(r.Context(), actor, event.ID)
		if err != nil {
			problem.WriteDomainError(w, r, err, actor != nil, h.Env)
			return
		}
		response.Participants = renderParticipants(participants)
	}

	writeJSON(w, http.StatusOK, response)
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), actor, events.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		StartsAt:    req.Date,
		Location:    req.Location,
		Status:      events.Status(req.Status),
	})
	if err != nil {
		metrics.EventOperations.WithLabelValues("create", "error").Inc()
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	metrics.EventOperations.WithLabelValues("create", "ok").Inc()
	writeJSON(w, http.StatusCreated, renderEvent(event))
}

type updateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Capacity    *int       `json:"capacity"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Status      *string    `json:"status"`
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	params := events.UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		StartsAt:    req.Date,
		Location:    req.Location,
	}
	if req.Status != nil {
		status := events.Status(*req.Status)
		params.Status = &status
	}

	event, err := h.Service.Update(r.Context(), actor, r.PathValue("id"), params)
	if err != nil {
		metrics.EventOperations.WithLabelValues("update", "error").Inc()
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	metrics.EventOperations.WithLabelValues("update", "ok").Inc()
	writeJSON(w, http.StatusOK, renderEvent(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	if err := h.Service.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		metrics.EventOperations.WithLabelValues("delete", "error").Inc()
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	metrics.EventOperations.WithLabelValues("delete", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	participant, err := h.Service.Join(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		metrics.EventOperations.WithLabelValues("join", "error").Inc()
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	metrics.EventOperations.WithLabelValues("join", "ok").Inc()
	writeJSON(w, http.StatusCreated, participantResponse{
		ID:       participant.ID,
		EventID:  participant.EventID,
		UserID:   participant.UserID,
		JoinedAt: participant.JoinedAt,
	})
}

func (h *EventsHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	if err := h.Service.Leave(r.Context(), actor, r.PathValue("id")); err != nil {
		metrics.EventOperations.WithLabelValues("leave", "error").Inc()
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	metrics.EventOperations.WithLabelValues("leave", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) Participants(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	participants, err := h.Service.Participants(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": renderParticipants(participants)})
}
