package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" OPEN ")
	require.NoError(t, err)
	require.Equal(t, StatusOpen, status)

	_, err = ParseStatus("archived")
	assertFilterError(t, err, "status", "must be open, closed, or canceled")
}

func TestEventCapacityHelpers(t *testing.T) {
	event := &Event{Capacity: 3, ParticipantCount: 2}
	require.False(t, event.IsFull())
	require.Equal(t, 1, event.RemainingCapacity())

	event.ParticipantCount = 3
	require.True(t, event.IsFull())
	require.Equal(t, 0, event.RemainingCapacity())

	event.ParticipantCount = 5
	require.Equal(t, 0, event.RemainingCapacity())
}

func TestEventIsPast(t *testing.T) {
	now := time.Now()
	require.True(t, (&Event{StartsAt: now.Add(-time.Hour)}).IsPast(now))
	require.False(t, (&Event{StartsAt: now.Add(time.Hour)}).IsPast(now))
}

func TestAcceptsJoins(t *testing.T) {
	require.True(t, (&Event{Status: StatusOpen}).AcceptsJoins())
	require.False(t, (&Event{Status: StatusClosed}).AcceptsJoins())
	require.False(t, (&Event{Status: StatusCanceled}).AcceptsJoins())
}
