package models

import (
	"testing"
	"time"
)

func TestMentorshipStatusValid(t *testing.T) {
	for _, status := range MentorshipStatuses {
		if !status.Valid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}

	if MentorshipStatus("archived").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestEventDerivedStatus(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	event := &Event{StartDate: start, EndDate: end, Status: EventUpcoming}

	if got := event.DerivedStatus(start.Add(-time.Hour)); got != EventUpcoming {
		t.Fatalf("before start: expected upcoming, got %s", got)
	}
	if got := event.DerivedStatus(start.Add(time.Hour)); got != EventOngoing {
		t.Fatalf("mid event: expected ongoing, got %s", got)
	}
	if got := event.DerivedStatus(end.Add(time.Minute)); got != EventCompleted {
		t.Fatalf("after end: expected completed, got %s", got)
	}

	event.Status = EventCancelled
	if got := event.DerivedStatus(start.Add(time.Hour)); got != EventCancelled {
		t.Fatalf("cancelled event: expected cancelled, got %s", got)
	}
}
