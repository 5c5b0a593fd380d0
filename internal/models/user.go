package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform roles. There is no separate mentor role: any active user may act as
// a mentor once their profile flags availability.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User describes a platform account.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`

	Role     string `gorm:"type:varchar(16);default:'user';index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user carries the global admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
