package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angel7544/mentorconnect/internal/database/testutil"
	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

func TestNotificationLifecycle(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "user-1")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateNotificationInput{UserID: user.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	created, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID:  user.ID,
		Type:    models.NotificationMentorshipRequest,
		Title:   "New mentorship request",
		Message: "Someone wants your time.",
		Metadata: map[string]any{
			"mentorship_id": "m-1",
		},
	})
	require.NoError(t, err)
	require.False(t, created.IsRead)
	require.Equal(t, "info", created.Severity)
	require.Equal(t, "m-1", created.Metadata["mentorship_id"])

	items, unread, err := svc.List(context.Background(), user.ID, ListNotificationsOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 1, unread)

	read, err := svc.MarkRead(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	_, unread, err = svc.List(context.Background(), user.ID, ListNotificationsOptions{})
	require.NoError(t, err)
	require.Zero(t, unread)

	onlyUnread, _, err := svc.List(context.Background(), user.ID, ListNotificationsOptions{UnreadOnly: true})
	require.NoError(t, err)
	require.Empty(t, onlyUnread)

	// Ownership is enforced on reads and deletes.
	_, err = svc.MarkRead(context.Background(), "someone-else", created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), "someone-else", created.ID), apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), user.ID, created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), user.ID, created.ID), apperrors.ErrNotFound)
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "user-1")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateNotificationInput{
			UserID: user.ID,
			Type:   models.NotificationMessageReceived,
			Title:  "New message",
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(context.Background(), user.ID))
	_, unread, err := svc.List(context.Background(), user.ID, ListNotificationsOptions{})
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationPruneRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "user-1")

	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	svc, err := NewNotificationService(db, nil, WithNotificationClock(func() time.Time { return now }))
	require.NoError(t, err)

	old := now.Add(-40 * 24 * time.Hour)
	stale := models.Notification{
		UserID: user.ID, Type: "x", Title: "old and read",
		IsRead: true, ReadAt: &old,
	}
	require.NoError(t, db.Create(&stale).Error)

	recent := now.Add(-time.Hour)
	fresh := models.Notification{
		UserID: user.ID, Type: "x", Title: "recently read",
		IsRead: true, ReadAt: &recent,
	}
	require.NoError(t, db.Create(&fresh).Error)

	unreadRow := models.Notification{UserID: user.ID, Type: "x", Title: "still unread"}
	require.NoError(t, db.Create(&unreadRow).Error)

	pruned, err := svc.PruneRead(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	require.EqualValues(t, 2, remaining, "unread and recently read rows survive")
}
