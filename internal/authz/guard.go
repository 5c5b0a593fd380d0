// Package authz resolves which caller may invoke which lifecycle action. It is
// a pure rule set: capability is re-derived on every call from the entity's
// relationship fields, with a global admin override. No state, no I/O.
package authz

import "github.com/angel7544/mentorconnect/internal/models"

// Actor identifies the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   string
	Role string
}

// Relationship carries the ownership fields of the entity under mutation.
// Unused fields stay empty; an empty field never matches an actor.
type Relationship struct {
	MentorID    string
	MenteeID    string
	OrganizerID string
}

// Action enumerates the guarded lifecycle operations.
type Action string

const (
	ActionAcceptMentorship   Action = "mentorship.accept"
	ActionDeclineMentorship  Action = "mentorship.decline"
	ActionCancelMentorship   Action = "mentorship.cancel"
	ActionCompleteMentorship Action = "mentorship.complete"
	ActionSubmitFeedback     Action = "mentorship.feedback"
	ActionManageEvent        Action = "event.manage"
)

// Allowed reports whether the actor may perform the action on an entity with
// the given relationships. Admins may perform any action an owner could.
func Allowed(actor Actor, rel Relationship, action Action) bool {
	if actor.ID == "" {
		return false
	}

	if actor.Role == models.RoleAdmin {
		return true
	}

	switch action {
	case ActionAcceptMentorship, ActionDeclineMentorship:
		return matches(actor.ID, rel.MentorID)
	case ActionCancelMentorship:
		return matches(actor.ID, rel.MenteeID)
	case ActionCompleteMentorship, ActionSubmitFeedback:
		return matches(actor.ID, rel.MentorID) || matches(actor.ID, rel.MenteeID)
	case ActionManageEvent:
		return matches(actor.ID, rel.OrganizerID)
	default:
		return false
	}
}

func matches(actorID, ownerID string) bool {
	return ownerID != "" && actorID == ownerID
}
