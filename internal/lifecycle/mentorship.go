// Package lifecycle owns the mentorship state machine. The transition table is
// an explicit whitelist: anything not listed fails, regardless of actor.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	loopfsm "github.com/looplab/fsm"

	"github.com/angel7544/mentorconnect/internal/models"
)

// Event represents an action that triggers a mentorship state transition.
type Event string

const (
	EventAccept   Event = "accept"
	EventDecline  Event = "decline"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
)

// Transition defines one valid state change.
type Transition struct {
	Event Event
	Src   models.MentorshipStatus
	Dst   models.MentorshipStatus
}

// Transitions is the full whitelist. Terminal states have no outgoing edges.
var Transitions = []Transition{
	{Event: EventAccept, Src: models.MentorshipPending, Dst: models.MentorshipActive},
	{Event: EventDecline, Src: models.MentorshipPending, Dst: models.MentorshipDeclined},
	{Event: EventCancel, Src: models.MentorshipPending, Dst: models.MentorshipCanceled},
	{Event: EventComplete, Src: models.MentorshipActive, Dst: models.MentorshipCompleted},
}

// TransitionError reports a transition attempt outside the whitelist.
type TransitionError struct {
	Event   Event
	Current models.MentorshipStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lifecycle: event %q not allowed from status %q", e.Event, e.Current)
}

// EventForTarget maps a requested target status onto the lifecycle event that
// produces it. The mapping is independent of the current state; whether the
// event applies is decided by Apply.
func EventForTarget(target models.MentorshipStatus) (Event, bool) {
	switch target {
	case models.MentorshipActive:
		return EventAccept, true
	case models.MentorshipDeclined:
		return EventDecline, true
	case models.MentorshipCanceled:
		return EventCancel, true
	case models.MentorshipCompleted:
		return EventComplete, true
	default:
		return "", false
	}
}

// events converts the transition table into looplab/fsm descriptors, grouping
// transitions that share an event and destination.
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range Transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Apply checks the event against the whitelist from the current status and
// returns the destination status. looplab/fsm is stateful, so a short-lived
// machine is created per call, initialised with the current status.
func Apply(ctx context.Context, current models.MentorshipStatus, event Event) (models.MentorshipStatus, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &TransitionError{Event: event, Current: current}
		}
		return "", err
	}

	return models.MentorshipStatus(machine.Current()), nil
}
