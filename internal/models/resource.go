package models

// ResourceType enumerates supported learning resource kinds.
const (
	ResourceArticle = "article"
	ResourceVideo   = "video"
	ResourceBook    = "book"
	ResourceCourse  = "course"
	ResourceOther   = "other"
)

// Resource is a user-submitted learning resource. Submissions require admin
// approval before they are listed to regular users.
type Resource struct {
	BaseModel

	UploaderID string `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Uploader   *User  `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"type:varchar(32);default:'article'" json:"type"`
	URL         string `json:"url"`
	Tags        string `gorm:"type:varchar(255)" json:"tags"`

	IsApproved bool `gorm:"default:false;index" json:"is_approved"`
}
