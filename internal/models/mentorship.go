package models

import (
	"time"

	"gorm.io/datatypes"
)

// MentorshipStatus enumerates the lifecycle states of a mentorship.
type MentorshipStatus string

const (
	MentorshipPending   MentorshipStatus = "pending"
	MentorshipActive    MentorshipStatus = "active"
	MentorshipCompleted MentorshipStatus = "completed"
	MentorshipDeclined  MentorshipStatus = "declined"
	MentorshipCanceled  MentorshipStatus = "canceled"
)

// MentorshipStatuses lists every valid status value.
var MentorshipStatuses = []MentorshipStatus{
	MentorshipPending,
	MentorshipActive,
	MentorshipCompleted,
	MentorshipDeclined,
	MentorshipCanceled,
}

// Valid reports whether the status is one of the declared values.
func (s MentorshipStatus) Valid() bool {
	for _, candidate := range MentorshipStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// MentorshipFeedback is one party's feedback slot. Each side holds at most one
// slot; re-submission overwrites the previous value (last write wins).
type MentorshipFeedback struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// Mentorship tracks a mentoring engagement between a mentor and a mentee.
// Records are never hard-deleted; terminal states are kept for history.
type Mentorship struct {
	BaseModel

	MentorID string `gorm:"type:uuid;not null;index:idx_mentorship_pair" json:"mentor_id"`
	MenteeID string `gorm:"type:uuid;not null;index:idx_mentorship_pair" json:"mentee_id"`
	Mentor   *User  `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
	Mentee   *User  `gorm:"foreignKey:MenteeID" json:"mentee,omitempty"`

	Status MentorshipStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`

	RequestMessage    string         `gorm:"type:text" json:"request_message"`
	Goals             string         `gorm:"type:text" json:"goals"`
	Topics            datatypes.JSON `json:"topics"`
	MeetingFrequency  string         `gorm:"type:varchar(32)" json:"meeting_frequency"`
	MeetingPreference string         `gorm:"type:varchar(32)" json:"meeting_preference"`

	// StartDate is stamped on the transition into active, EndDate on the
	// transition into completed. Absent otherwise.
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	// StatusNote carries the optional note supplied with the latest transition.
	StatusNote string `gorm:"type:text" json:"status_note,omitempty"`

	MentorFeedback datatypes.JSON `json:"mentor_feedback,omitempty"`
	MenteeFeedback datatypes.JSON `json:"mentee_feedback,omitempty"`
}
