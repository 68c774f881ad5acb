// Package problem writes RFC 7807 application/problem+json responses and
// maps domain errors to HTTP statuses.
package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/domain/events"
	"github.com/gatherhall/server/internal/domain/users"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const (
	TypeValidation   = "https://gatherhall.dev/problems/validation-error"
	TypeAuthorize    = "https://gatherhall.dev/problems/authorization-error"
	TypeUnauthorized = "https://gatherhall.dev/problems/authentication-required"
	TypeNotFound     = "https://gatherhall.dev/problems/not-found"
	TypeConflict     = "https://gatherhall.dev/problems/conflict"
	TypeServerError  = "https://gatherhall.dev/problems/server-error"
)

type ProblemDetails struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	details := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&details)
	}

	if details.Detail == "" && err != nil {
		if env == "development" || env == "test" || status < 500 {
			details.Detail = err.Error()
		} else {
			details.Detail = http.StatusText(status)
		}
	}

	if details.Instance == "" && r != nil {
		details.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(details)
}

// WriteDomainError translates the error taxonomy to HTTP. Authorization
// failures by anonymous callers become 401; authenticated actors get 403.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error, authenticated bool, env string) {
	var validation events.ValidationError
	var fieldErrors validator.ValidationErrors
	var authz events.AuthorizationError
	var notFound events.NotFoundError
	var conflict events.ConflictError

	switch {
	case errors.As(err, &validation):
		Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env,
			WithErrors(map[string]any{validation.Field: validation.Message}))
	case errors.As(err, &fieldErrors):
		errs := make(map[string]any, len(fieldErrors))
		for _, fe := range fieldErrors {
			errs[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " validation"
		}
		Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env,
			WithDetail("one or more fields failed validation"),
			WithErrors(errs))
	case errors.As(err, &authz):
		status := http.StatusForbidden
		typ := TypeAuthorize
		if !authenticated {
			status = http.StatusUnauthorized
			typ = TypeUnauthorized
		}
		Write(w, r, status, typ, "Not authorized", err, env)
	case errors.As(err, &notFound):
		Write(w, r, http.StatusNotFound, TypeNotFound, "Not found", err, env)
	case errors.As(err, &conflict):
		Write(w, r, http.StatusConflict, TypeConflict, "Conflict", err, env)
	case errors.Is(err, users.ErrNotFound):
		Write(w, r, http.StatusNotFound, TypeNotFound, "Not found", err, env)
	case errors.Is(err, users.ErrEmailTaken):
		Write(w, r, http.StatusConflict, TypeConflict, "Conflict", err, env)
	case errors.Is(err, users.ErrInvalidCredentials):
		Write(w, r, http.StatusUnauthorized, TypeUnauthorized, "Invalid credentials", err, env)
	case errors.Is(err, users.ErrForbidden):
		Write(w, r, http.StatusForbidden, TypeAuthorize, "Not authorized", err, env)
	case errors.Is(err, users.ErrInvalidRole), errors.Is(err, audit.ErrInvalidAction):
		Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env)
	case errors.Is(err, audit.ErrUnauthenticated):
		Write(w, r, http.StatusUnauthorized, TypeUnauthorized, "Not authorized", err, env)
	default:
		Write(w, r, http.StatusInternalServerError, TypeServerError, "Server error", err, env)
	}
}
