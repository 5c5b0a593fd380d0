package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the lifecycle services.
const (
	NotificationMentorshipRequest = "mentorship.request"
	NotificationMentorshipStatus  = "mentorship.status"
	NotificationMentorshipReview  = "mentorship.feedback"
	NotificationEventRegistration = "event.registration"
	NotificationMessageReceived   = "message.received"
)

// Notification represents an in-app notification for a user.
type Notification struct {
	BaseModel

	UserID   string         `gorm:"type:uuid;index" json:"user_id"`
	Type     string         `gorm:"type:varchar(64);not null" json:"type"`
	Title    string         `gorm:"type:varchar(255);not null" json:"title"`
	Message  string         `gorm:"type:text" json:"message"`
	Severity string         `gorm:"type:varchar(32);default:'info'" json:"severity"`
	Metadata datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
