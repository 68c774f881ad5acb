package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherhall/server/internal/audit"
	"github.com/gatherhall/server/internal/config"
	"github.com/gatherhall/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestService(store *fakeStore) *Service {
	cfg := config.EventsConfig{DefaultCapacity: 50, MaxOpenEvents: 5}
	return NewService(store, cfg, zerolog.Nop())
}

func validCreateParams() CreateParams {
	return CreateParams{
		Name:        "Board Game Night",
		Description: "Bring your own games",
		Capacity:    10,
		StartsAt:    time.Now().Add(72 * time.Hour),
		Location:    "Community Hall",
	}
}

func TestCreate_Success(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)

	event, err := service.Create(context.Background(), creator, validCreateParams())

	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.Equal(t, StatusOpen, event.Status)
	require.Equal(t, creator.ID, event.CreatorID)
	require.Equal(t, 10, event.Capacity)

	require.Len(t, store.state.logs, 1)
	entry := store.state.logs[0]
	require.Equal(t, audit.ActionCreate, entry.Action)
	require.Equal(t, event.ID, *entry.EventID)
	require.Equal(t, creator.ID, *entry.UserID)
	require.Equal(t, event.Name, entry.Metadata["event_name"])
}

func TestCreate_DefaultsCapacity(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)

	params := validCreateParams()
	params.Capacity = 0
	event, err := service.Create(context.Background(), creator, params)

	require.NoError(t, err)
	require.Equal(t, 50, event.Capacity)
}

func TestCreate_RegularUserDenied(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	_, err := service.Create(context.Background(), testUser("u1", users.RoleRegularUser), validCreateParams())

	var authzErr AuthorizationError
	require.ErrorAs(t, err, &authzErr)
	require.Empty(t, store.state.events)
	require.Empty(t, store.state.logs)
}

func TestCreate_AnonymousDenied(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	_, err := service.Create(context.Background(), nil, validCreateParams())

	var authzErr AuthorizationError
	require.ErrorAs(t, err, &authzErr)
}

func TestCreate_MissingNameRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	params := validCreateParams()
	params.Name = "   "
	_, err := service.Create(context.Background(), testUser("c1", users.RoleEventCreator), params)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "name", validationErr.Field)
}

func TestCreate_QuotaEnforced(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)

	for range 5 {
		seedEvent(store, creator, StatusOpen, 10)
	}

	_, err := service.Create(context.Background(), creator, validCreateParams())

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "quota", validationErr.Field)
	require.Len(t, store.state.events, 5)
	require.Empty(t, store.state.logs)
}

func TestCreate_QuotaCountsOnlyOpenEvents(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)

	for range 4 {
		seedEvent(store, creator, StatusOpen, 10)
	}
	seedEvent(store, creator, StatusClosed, 10)
	seedEvent(store, creator, StatusCanceled, 10)

	_, err := service.Create(context.Background(), creator, validCreateParams())

	require.NoError(t, err)
}

func TestCreate_QuotaExemptsAdmins(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	admin := testUser("admin-1", users.RoleAdmin)

	for range 7 {
		seedEvent(store, admin, StatusOpen, 10)
	}

	_, err := service.Create(context.Background(), admin, validCreateParams())

	require.NoError(t, err)
}

func TestCreate_LedgerFailureRollsBackEvent(t *testing.T) {
	store := newFakeStore()
	store.state.appendErr = errors.New("ledger write failed")
	service := newTestService(store)

	_, err := service.Create(context.Background(), testUser("c1", users.RoleEventCreator), validCreateParams())

	require.Error(t, err)
	require.Empty(t, store.state.events)
	require.Empty(t, store.state.logs)
}

func TestCreate_SanitizesDescription(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	params := validCreateParams()
	params.Description = `<p>Fun night</p><script>alert(1)</script>`
	event, err := service.Create(context.Background(), testUser("c1", users.RoleEventCreator), params)

	require.NoError(t, err)
	require.NotContains(t, event.Description, "<script>")
	require.Contains(t, event.Description, "Fun night")
}

func TestUpdate_ByCreator(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	name := "Renamed Event"
	updated, err := service.Update(context.Background(), creator, event.ID, UpdateParams{Name: &name})

	require.NoError(t, err)
	require.Equal(t, "Renamed Event", updated.Name)

	require.Len(t, store.state.logs, 1)
	entry := store.state.logs[0]
	require.Equal(t, audit.ActionUpdate, entry.Action)
	require.Equal(t, []string{"name"}, entry.Metadata["updated_fields"])
}

func TestUpdate_ByAdminNonOwner(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	name := "Admin Renamed"
	_, err := service.Update(context.Background(), testUser("admin-1", users.RoleAdmin), event.ID, UpdateParams{Name: &name})

	require.NoError(t, err)
}

func TestUpdate_NonOwnerDenied(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)

	name := "Hijacked"
	_, err := service.Update(context.Background(), testUser("creator-2", users.RoleEventCreator), event.ID, UpdateParams{Name: &name})

	var authzErr AuthorizationError
	require.ErrorAs(t, err, &authzErr)
	require.Empty(t, store.state.logs)
}

func TestUpdate_StatusChangeLogged(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	status := StatusClosed
	updated, err := service.Update(context.Background(), creator, event.ID, UpdateParams{Status: &status})

	require.NoError(t, err)
	require.Equal(t, StatusClosed, updated.Status)

	require.Len(t, store.state.logs, 1)
	entry := store.state.logs[0]
	require.Equal(t, audit.ActionStatusChange, entry.Action)
	require.Equal(t, "open", entry.Metadata["status_from"])
	require.Equal(t, "closed", entry.Metadata["status_to"])
}

func TestUpdate_NoChangesIsNoOp(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	updated, err := service.Update(context.Background(), creator, event.ID, UpdateParams{})

	require.NoError(t, err)
	require.Equal(t, event.ID, updated.ID)
	require.Empty(t, store.state.logs)
}

func TestUpdate_CapacityBelowParticipantCountRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	for _, userID := range []string{"a", "b", "c"} {
		_, err := service.Join(context.Background(), testUser(userID, users.RoleRegularUser), event.ID)
		require.NoError(t, err)
	}

	capacity := 2
	_, err := service.Update(context.Background(), creator, event.ID, UpdateParams{Capacity: &capacity})

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "capacity", validationErr.Field)
}

func TestUpdate_MissingEvent(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	name := "x"
	_, err := service.Update(context.Background(), testUser("c1", users.RoleEventCreator), "nope", UpdateParams{Name: &name})

	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDelete_WithParticipantsRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	_, err := service.Join(context.Background(), testUser("u1", users.RoleRegularUser), event.ID)
	require.NoError(t, err)

	err = service.Delete(context.Background(), creator, event.ID)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "participants", validationErr.Field)
	require.Contains(t, store.state.events, event.ID)
}

func TestDelete_LogsWithNilEventReference(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)

	err := service.Delete(context.Background(), creator, event.ID)

	require.NoError(t, err)
	require.NotContains(t, store.state.events, event.ID)

	require.Len(t, store.state.logs, 1)
	entry := store.state.logs[0]
	require.Equal(t, audit.ActionDelete, entry.Action)
	require.Nil(t, entry.EventID)
	require.Equal(t, event.ID, entry.Metadata["event_id"])
	require.Equal(t, event.Name, entry.Metadata["event_name"])
}

func TestDelete_NonOwnerDenied(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)

	err := service.Delete(context.Background(), testUser("u1", users.RoleRegularUser), event.ID)

	var authzErr AuthorizationError
	require.ErrorAs(t, err, &authzErr)
}

func TestJoin_Success(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)
	member := testUser("u1", users.RoleRegularUser)

	participant, err := service.Join(context.Background(), member, event.ID)

	require.NoError(t, err)
	require.Equal(t, event.ID, participant.EventID)
	require.Equal(t, member.ID, participant.UserID)

	require.Len(t, store.state.logs, 1)
	require.Equal(t, audit.ActionJoin, store.state.logs[0].Action)
}

func TestJoin_AnonymousDenied(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)

	_, err := service.Join(context.Background(), nil, event.ID)

	var authzErr AuthorizationError
	require.ErrorAs(t, err, &authzErr)
}

func TestJoin_FullEventRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 2)

	_, err := service.Join(context.Background(), testUser("a", users.RoleRegularUser), event.ID)
	require.NoError(t, err)
	_, err = service.Join(context.Background(), testUser("b", users.RoleRegularUser), event.ID)
	require.NoError(t, err)

	_, err = service.Join(context.Background(), testUser("c", users.RoleRegularUser), event.ID)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "capacity", validationErr.Field)
	require.Len(t, store.state.participants, 2)
}

func TestJoin_ClosedEventRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusClosed, 10)

	_, err := service.Join(context.Background(), testUser("u1", users.RoleRegularUser), event.ID)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "status", validationErr.Field)
}

func TestJoin_DuplicateRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)
	member := testUser("u1", users.RoleRegularUser)

	_, err := service.Join(context.Background(), member, event.ID)
	require.NoError(t, err)

	_, err = service.Join(context.Background(), member, event.ID)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "participant", validationErr.Field)
	require.Len(t, store.state.participants, 1)
	require.Len(t, store.state.logs, 1)
}

func TestLeave_Success(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)
	member := testUser("u1", users.RoleRegularUser)

	_, err := service.Join(context.Background(), member, event.ID)
	require.NoError(t, err)

	err = service.Leave(context.Background(), member, event.ID)

	require.NoError(t, err)
	require.Empty(t, store.state.participants)
	require.Len(t, store.state.logs, 2)
	require.Equal(t, audit.ActionLeave, store.state.logs[1].Action)
}

func TestLeave_NotJoinedRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	event := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusOpen, 10)

	err := service.Leave(context.Background(), testUser("u1", users.RoleRegularUser), event.ID)

	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGet_AnonymousSeesOpenOnly(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	open := seedEvent(store, creator, StatusOpen, 10)
	closed := seedEvent(store, creator, StatusClosed, 10)

	event, err := service.Get(context.Background(), nil, open.ID)
	require.NoError(t, err)
	require.Equal(t, open.ID, event.ID)

	_, err = service.Get(context.Background(), nil, closed.ID)
	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGet_AuthenticatedSeesClosed(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	closed := seedEvent(store, testUser("creator-1", users.RoleEventCreator), StatusClosed, 10)

	event, err := service.Get(context.Background(), testUser("u1", users.RoleRegularUser), closed.ID)

	require.NoError(t, err)
	require.Equal(t, closed.ID, event.ID)
}

func TestList_AnonymousForcedToOpen(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	seedEvent(store, creator, StatusOpen, 10)
	seedEvent(store, creator, StatusClosed, 10)

	result, err := service.List(context.Background(), nil, Filters{Status: StatusClosed}, Pagination{Limit: 50})

	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	require.Equal(t, StatusOpen, result.Events[0].Status)
}

func TestList_MineResolvesToActor(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	other := testUser("creator-2", users.RoleEventCreator)
	seedEvent(store, creator, StatusOpen, 10)
	seedEvent(store, other, StatusOpen, 10)

	result, err := service.List(context.Background(), creator, Filters{Mine: true}, Pagination{Limit: 50})

	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	require.Equal(t, creator.ID, result.Events[0].CreatorID)
}

func TestParticipants_CreatorAndAdminOnly(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	creator := testUser("creator-1", users.RoleEventCreator)
	event := seedEvent(store, creator, StatusOpen, 10)
	member := testUser("u1", users.RoleRegularUser)

	_, err := service.Join(context.Background(), member, event.ID)
	require.NoError(t, err)

	roster, err := service.Participants(context.Background(), creator, event.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	roster, err = service.Participants(context.Background(), testUser("admin-1", users.RoleAdmin), event.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	_, err = service.Participants(context.Background(), member, event.ID)
	var authzErr AuthorizationError
	require.ErrorAs(t, err, &authzErr)
}
