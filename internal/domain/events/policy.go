package events

import "github.com/gatherhall/server/internal/domain/users"

// Authorization predicates. A nil actor means the caller is anonymous.

// CanCreateEvent allows admins and event creators to create events.
func CanCreateEvent(actor *users.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role == users.RoleAdmin || actor.Role == users.RoleEventCreator
}

// CanModifyEvent allows the event's creator and admins to update or
// delete it.
func CanModifyEvent(actor *users.User, event *Event) bool {
	if actor == nil || event == nil {
		return false
	}
	return actor.Role.IsAdmin() || actor.ID == event.CreatorID
}

// CanReadEvent restricts anonymous visibility to open events.
// Authenticated actors may read any event.
func CanReadEvent(actor *users.User, event *Event) bool {
	if event == nil {
		return false
	}
	if actor != nil {
		return true
	}
	return event.Status == StatusOpen
}

// CanViewParticipants allows the creator and admins to see the roster.
func CanViewParticipants(actor *users.User, event *Event) bool {
	return CanModifyEvent(actor, event)
}

// CanManageParticipation allows a user to manage their own participation
// row; admins may manage anyone's.
func CanManageParticipation(actor *users.User, participant *Participant) bool {
	if actor == nil || participant == nil {
		return false
	}
	return actor.Role.IsAdmin() || actor.ID == participant.UserID
}
