// Package users holds the user entity, the role enumeration, and account
// operations (register, authenticate, administrative role changes).
package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleEventCreator Role = "event_creator"
	RoleRegularUser  Role = "regular_user"
)

// DefaultRole is assigned to newly registered users.
const DefaultRole = RoleRegularUser

func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEventCreator:
		return RoleEventCreator, nil
	case RoleRegularUser:
		return RoleRegularUser, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) IsEventCreator() bool {
	return r == RoleEventCreator
}

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
)

type CreateParams struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
}
