package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angel7544/mentorconnect/internal/models"
)

var rel = Relationship{
	MentorID:    "mentor-1",
	MenteeID:    "mentee-1",
	OrganizerID: "organizer-1",
}

func TestMentorOnlyActions(t *testing.T) {
	mentor := Actor{ID: "mentor-1", Role: models.RoleUser}
	mentee := Actor{ID: "mentee-1", Role: models.RoleUser}

	for _, action := range []Action{ActionAcceptMentorship, ActionDeclineMentorship} {
		require.True(t, Allowed(mentor, rel, action), "mentor should be allowed %s", action)
		require.False(t, Allowed(mentee, rel, action), "mentee should be denied %s", action)
	}
}

func TestMenteeOnlyActions(t *testing.T) {
	mentor := Actor{ID: "mentor-1", Role: models.RoleUser}
	mentee := Actor{ID: "mentee-1", Role: models.RoleUser}

	require.True(t, Allowed(mentee, rel, ActionCancelMentorship))
	require.False(t, Allowed(mentor, rel, ActionCancelMentorship))
}

func TestEitherPartyActions(t *testing.T) {
	for _, action := range []Action{ActionCompleteMentorship, ActionSubmitFeedback} {
		require.True(t, Allowed(Actor{ID: "mentor-1"}, rel, action))
		require.True(t, Allowed(Actor{ID: "mentee-1"}, rel, action))
		require.False(t, Allowed(Actor{ID: "stranger"}, rel, action))
	}
}

func TestEventManagement(t *testing.T) {
	require.True(t, Allowed(Actor{ID: "organizer-1"}, rel, ActionManageEvent))
	require.False(t, Allowed(Actor{ID: "mentor-1"}, rel, ActionManageEvent))
}

func TestAdminOverride(t *testing.T) {
	admin := Actor{ID: "admin-1", Role: models.RoleAdmin}

	for _, action := range []Action{
		ActionAcceptMentorship,
		ActionDeclineMentorship,
		ActionCancelMentorship,
		ActionCompleteMentorship,
		ActionSubmitFeedback,
		ActionManageEvent,
	} {
		require.True(t, Allowed(admin, rel, action), "admin should be allowed %s", action)
	}
}

func TestAnonymousAndUnknownAction(t *testing.T) {
	require.False(t, Allowed(Actor{}, rel, ActionAcceptMentorship))
	require.False(t, Allowed(Actor{ID: "mentor-1"}, rel, Action("mentorship.archive")))
}

func TestEmptyRelationshipNeverMatches(t *testing.T) {
	require.False(t, Allowed(Actor{ID: ""}, Relationship{}, ActionManageEvent))
	require.False(t, Allowed(Actor{ID: "x"}, Relationship{}, ActionManageEvent))
}
