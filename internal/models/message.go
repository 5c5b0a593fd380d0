package models

import "time"

// Message is a direct message between two users.
type Message struct {
	BaseModel

	SenderID    string `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID string `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Sender      *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient   *User  `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
