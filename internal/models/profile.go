package models

import "gorm.io/datatypes"

// Profile extends a user account with mentorship-facing details.
type Profile struct {
	BaseModel

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	Headline        string         `gorm:"type:varchar(255)" json:"headline"`
	Bio             string         `gorm:"type:text" json:"bio"`
	Skills          datatypes.JSON `json:"skills"`
	Interests       datatypes.JSON `json:"interests"`
	YearsExperience int            `json:"years_experience"`
	LinkedInURL     string         `json:"linkedin_url"`

	// MentorshipAvailable gates whether new mentorship requests may target
	// this user. Checked at request time only; flipping it off does not
	// affect mentorships already pending or active.
	MentorshipAvailable bool `gorm:"default:false;index" json:"mentorship_available"`
	MaxMentees          int  `gorm:"default:3" json:"max_mentees"`
}
