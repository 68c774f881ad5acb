package events

import (
	"testing"

	"github.com/gatherhall/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

func TestCanCreateEvent(t *testing.T) {
	require.True(t, CanCreateEvent(testUser("a", users.RoleAdmin)))
	require.True(t, CanCreateEvent(testUser("c", users.RoleEventCreator)))
	require.False(t, CanCreateEvent(testUser("r", users.RoleRegularUser)))
	require.False(t, CanCreateEvent(nil))
}

func TestCanModifyEvent(t *testing.T) {
	creator := testUser("creator-1", users.RoleEventCreator)
	event := &Event{ID: "e1", CreatorID: creator.ID}

	require.True(t, CanModifyEvent(creator, event))
	require.True(t, CanModifyEvent(testUser("admin-1", users.RoleAdmin), event))
	require.False(t, CanModifyEvent(testUser("creator-2", users.RoleEventCreator), event))
	require.False(t, CanModifyEvent(nil, event))
	require.False(t, CanModifyEvent(creator, nil))
}

func TestCanReadEvent(t *testing.T) {
	open := &Event{Status: StatusOpen}
	closed := &Event{Status: StatusClosed}

	require.True(t, CanReadEvent(nil, open))
	require.False(t, CanReadEvent(nil, closed))
	require.True(t, CanReadEvent(testUser("r", users.RoleRegularUser), closed))
	require.False(t, CanReadEvent(nil, nil))
}

func TestCanViewParticipants(t *testing.T) {
	creator := testUser("creator-1", users.RoleEventCreator)
	event := &Event{ID: "e1", CreatorID: creator.ID}

	require.True(t, CanViewParticipants(creator, event))
	require.True(t, CanViewParticipants(testUser("admin-1", users.RoleAdmin), event))
	require.False(t, CanViewParticipants(testUser("r", users.RoleRegularUser), event))
	require.False(t, CanViewParticipants(nil, event))
}

func TestCanManageParticipation(t *testing.T) {
	member := testUser("u1", users.RoleRegularUser)
	participant := &Participant{ID: "p1", UserID: member.ID}

	require.True(t, CanManageParticipation(member, participant))
	require.True(t, CanManageParticipation(testUser("admin-1", users.RoleAdmin), participant))
	require.False(t, CanManageParticipation(testUser("u2", users.RoleRegularUser), participant))
	require.False(t, CanManageParticipation(nil, participant))
}
