package database

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Mentorship{},
		&models.Event{},
		&models.EventAttendee{},
		&models.Message{},
		&models.Resource{},
		&models.ForumTopic{},
		&models.ForumReply{},
		&models.Notification{},
	)
}

// SeedData ensures an administrator account exists. The initial password comes
// from MENTORCONNECT_ADMIN_PASSWORD; seeding is skipped when unset and an
// admin is already present.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := strings.TrimSpace(os.Getenv("MENTORCONNECT_ADMIN_PASSWORD"))
	if password == "" {
		return nil
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@mentorconnect.local",
		Password: hashed,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := db.Where(models.User{Username: admin.Username}).Attrs(admin).FirstOrCreate(&models.User{}).Error; err != nil {
		return err
	}

	return nil
}
