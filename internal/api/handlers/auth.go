package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gatherhall/server/internal/api/middleware"
	"github.com/gatherhall/server/internal/api/problem"
	"github.com/gatherhall/server/internal/auth"
	"github.com/gatherhall/server/internal/domain/users"
)

type AuthHandler struct {
	Users *users.Service
	JWT   *auth.JWTManager
	Env   string
}

func NewAuthHandler(usersService *users.Service, jwtManager *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{Users: usersService, JWT: jwtManager, Env: env}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		problem.WriteDomainError(w, r, err, false, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, renderUser(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		problem.WriteDomainError(w, r, err, false, h.Env)
		return
	}

	token, err := h.JWT.Generate(user.ID, string(user.Role), user.Email)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: renderUser(user)})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole lets admins change another user's role.
func (h *AuthHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	role, err := users.ParseRole(req.Role)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid role", err, h.Env)
		return
	}

	user, err := h.Users.SetRole(r.Context(), actor, r.PathValue("id"), role)
	if err != nil {
		problem.WriteDomainError(w, r, err, actor != nil, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, renderUser(user))
}
