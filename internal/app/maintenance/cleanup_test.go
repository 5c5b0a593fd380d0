package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/angel7544/mentorconnect/internal/database/testutil"
	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/crypto"
)

func TestPurgeDeletedUsers(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	stale := seedUser(t, db, "stale")
	recent := seedUser(t, db, "recent")
	active := seedUser(t, db, "active")

	require.NoError(t, db.Create(&models.Profile{UserID: stale.ID}).Error)
	require.NoError(t, db.Create(&models.Notification{
		UserID: stale.ID,
		Type:   "system",
		Title:  "stale",
	}).Error)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", stale.ID).Error)
	require.NoError(t, db.Delete(&models.User{}, "id = ?", recent.ID).Error)

	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", stale.ID).
		Update("deleted_at", now.Add(-120*24*time.Hour)).Error)
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", recent.ID).
		Update("deleted_at", now.Add(-24*time.Hour)).Error)

	purged, err := PurgeDeletedUsers(context.Background(), db, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	var gone models.User
	err = db.Unscoped().First(&gone, "id = ?", stale.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var profileCount int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", stale.ID).Count(&profileCount).Error)
	require.Equal(t, int64(0), profileCount)

	var notifCount int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", stale.ID).Count(&notifCount).Error)
	require.Equal(t, int64(0), notifCount)

	var kept models.User
	require.NoError(t, db.Unscoped().First(&kept, "id = ?", recent.ID).Error)
	var live models.User
	require.NoError(t, db.First(&live, "id = ?", active.ID).Error)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	clock := fixedClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	notifications, err := services.NewNotificationService(db, nil,
		services.WithNotificationClock(clock.Now))
	require.NoError(t, err)

	user := seedUser(t, db, "cleaner-user")

	// Read notification well past the retention window.
	oldRead := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Notification{
		UserID: user.ID,
		Type:   "system",
		Title:  "old",
		IsRead: true,
		ReadAt: &oldRead,
	}).Error)

	// Unread notifications survive regardless of age.
	require.NoError(t, db.Create(&models.Notification{
		UserID: user.ID,
		Type:   "system",
		Title:  "unread",
	}).Error)

	ghost := seedUser(t, db, "ghost")
	require.NoError(t, db.Delete(&models.User{}, "id = ?", ghost.ID).Error)
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", ghost.ID).
		Update("deleted_at", clock.Now().Add(-200*24*time.Hour)).Error)

	c := NewCleaner(db, notifications,
		WithNow(clock.Now),
		WithNotificationRetention(30*24*time.Hour),
		WithUserPurgeRetention(90*24*time.Hour),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var notifCount int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifCount).Error)
	require.Equal(t, int64(1), notifCount)

	var ghostUser models.User
	err = db.Unscoped().First(&ghostUser, "id = ?", ghost.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword("Password123!")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}
