package models

import "time"

// ForumTopic is a discussion thread started by a user.
type ForumTopic struct {
	BaseModel

	AuthorID string `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Title    string `gorm:"not null" json:"title"`
	Body     string `gorm:"type:text" json:"body"`
	Category string `gorm:"type:varchar(64);index" json:"category"`

	// ReplyCount and LastReplyAt are denormalised on each reply write.
	ReplyCount  int        `gorm:"default:0" json:"reply_count"`
	LastReplyAt *time.Time `json:"last_reply_at,omitempty"`

	IsPinned bool `gorm:"default:false" json:"is_pinned"`
	IsLocked bool `gorm:"default:false" json:"is_locked"`

	Replies []ForumReply `gorm:"foreignKey:TopicID" json:"replies,omitempty"`
}

// ForumReply is a single reply inside a topic.
type ForumReply struct {
	BaseModel

	TopicID  string `gorm:"type:uuid;not null;index" json:"topic_id"`
	AuthorID string `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`
}
