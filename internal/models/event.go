package models

import "time"

// EventStatus enumerates the stored event-level status. The stored value is
// only recomputed by writes that touch the event dates; it can go stale on an
// event that ages without updates. Callers needing a real-time answer should
// use DerivedStatus.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// AttendeeStatus enumerates per-attendee registration states.
type AttendeeStatus string

const (
	AttendeeRegistered AttendeeStatus = "registered"
	AttendeeWaitlisted AttendeeStatus = "waitlisted"
	AttendeeAttended   AttendeeStatus = "attended"
	AttendeeCancelled  AttendeeStatus = "cancelled"
)

// Event is an organizer-owned event with an attendee list.
type Event struct {
	BaseModel

	OrganizerID string `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *User  `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(64);index" json:"category"`
	Location    string `json:"location"`
	IsVirtual   bool   `gorm:"default:false" json:"is_virtual"`
	MeetingLink string `json:"meeting_link,omitempty"`

	StartDate            time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate              time.Time  `gorm:"not null" json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	// Capacity nil means unlimited.
	Capacity *int    `json:"capacity,omitempty"`
	IsPaid   bool    `gorm:"default:false" json:"is_paid"`
	Price    float64 `json:"price"`

	Status EventStatus `gorm:"type:varchar(16);default:'upcoming';index" json:"status"`

	Attendees []EventAttendee `gorm:"foreignKey:EventID" json:"attendees,omitempty"`
}

// DerivedStatus computes the event status from its dates at the given instant.
// A cancelled event stays cancelled.
func (e *Event) DerivedStatus(now time.Time) EventStatus {
	if e.Status == EventCancelled {
		return EventCancelled
	}
	switch {
	case now.Before(e.StartDate):
		return EventUpcoming
	case now.After(e.EndDate):
		return EventCompleted
	default:
		return EventOngoing
	}
}

// EventAttendee is one user's registration record against an event. Cancelled
// rows are retained (status flipped in place) to preserve audit history.
type EventAttendee struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index" json:"event_id"`
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	User    *User  `json:"user,omitempty"`

	RegistrationDate time.Time      `gorm:"not null" json:"registration_date"`
	HasPaid          bool           `gorm:"default:false" json:"has_paid"`
	Status           AttendeeStatus `gorm:"type:varchar(16);default:'registered';index" json:"status"`
}
