package handlers

import (
	"net/http"
	"strconv"

	"github.com/gatherhall/server/internal/api/middleware"
	"github.com/gatherhall/server/internal/api/problem"
	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/domain/events"
)

type LogsHandler struct {
	Service *audit.Service
	Env     string
}

func NewLogsHandler(service *audit.Service, env string) *LogsHandler {
	return &LogsHandler{Service: service, Env: env}
}

// List serves the audit ledger scoped to the caller's role.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	filters, err := parseLogFilters(r)
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	logs, err := h.Service.List(r.Context(), actor, filters)
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": renderLogs(logs)})
}

// EventLogs serves the ledger for one event, still subject to scoping.
func (h *LogsHandler) EventLogs(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	filters, err := parseLogFilters(r)
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}
	filters.EventID = r.PathValue("id")

	logs, err := h.Service.List(r.Context(), actor, filters)
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": renderLogs(logs)})
}

func parseLogFilters(r *http.Request) (audit.Filters, error) {
	q := r.URL.Query()
	filters := audit.Filters{
		EventID: q.Get("event"),
		UserID:  q.Get("user"),
	}

	if raw := q.Get("action"); raw != "" {
		action, err := audit.ParseAction(raw)
		if err != nil {
			return filters, err
		}
		filters.Action = action
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filters, events.ValidationError{Field: "limit", Message: "must be a positive integer"}
		}
		filters.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filters, events.ValidationError{Field: "offset", Message: "must be a non-negative integer"}
		}
		filters.Offset = offset
	}

	return filters, nil
}
