package postgres

import (
	"context"
	"testing"

	"github.com/gatherhall/server/internal/domain/ids"
	"github.com/gatherhall/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Users().Create(ctx, users.CreateParams{
		ID:           ids.MustNewULID(),
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealhashnot",
		Role:         users.RoleEventCreator,
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", created.Email)
	require.Equal(t, users.RoleEventCreator, created.Role)
	require.False(t, created.CreatedAt.IsZero())

	byID, err := repo.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, byID.Email)

	byEmail, err := repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seed := seedUser(t, repo, users.RoleRegularUser)

	_, err := repo.Users().Create(ctx, users.CreateParams{
		ID:           ids.MustNewULID(),
		Email:        seed.Email,
		Name:         "Impostor",
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealhashnot",
		Role:         users.RoleRegularUser,
	})
	require.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestUserRepositoryGetMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Users().GetByID(ctx, ids.MustNewULID())
	require.ErrorIs(t, err, users.ErrNotFound)

	_, err = repo.Users().GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestUserRepositoryUpdateRole(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seed := seedUser(t, repo, users.RoleRegularUser)

	updated, err := repo.Users().UpdateRole(ctx, seed.ID, users.RoleEventCreator)
	require.NoError(t, err)
	require.Equal(t, users.RoleEventCreator, updated.Role)
	require.True(t, updated.UpdatedAt.After(seed.UpdatedAt) || updated.UpdatedAt.Equal(seed.UpdatedAt))

	_, err = repo.Users().UpdateRole(ctx, ids.MustNewULID(), users.RoleAdmin)
	require.ErrorIs(t, err, users.ErrNotFound)
}
