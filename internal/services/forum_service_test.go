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

func TestForumTopicAndReplies(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	author := seedUser(t, db, "author")
	replier := seedUser(t, db, "replier")

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewForumService(db, WithForumClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	topic, err := svc.CreateTopic(context.Background(), CreateTopicInput{
		AuthorID: author.ID,
		Title:    "Finding a mentor in infra",
		Body:     "Where do I start?",
		Category: "careers",
	})
	require.NoError(t, err)
	require.Zero(t, topic.ReplyCount)
	require.Nil(t, topic.LastReplyAt)

	_, err = svc.Reply(context.Background(), topic.ID, replier.ID, "Check the mentor directory.")
	require.NoError(t, err)
	_, err = svc.Reply(context.Background(), topic.ID, author.ID, "Thanks, will do.")
	require.NoError(t, err)

	loaded, err := svc.GetTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.ReplyCount)
	require.NotNil(t, loaded.LastReplyAt)
	require.True(t, loaded.LastReplyAt.Equal(fixed))
	require.Len(t, loaded.Replies, 2)
	require.Equal(t, "Check the mentor directory.", loaded.Replies[0].Body)

	_, err = svc.Reply(context.Background(), "missing-topic", replier.ID, "hello")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.Reply(context.Background(), topic.ID, replier.ID, "  ")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestForumLockAndPin(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	author := seedUser(t, db, "author")
	admin := models.User{ID: "admin-1", Username: "admin", Email: "admin@example.com",
		Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	svc, err := NewForumService(db)
	require.NoError(t, err)

	topic, err := svc.CreateTopic(context.Background(), CreateTopicInput{
		AuthorID: author.ID,
		Title:    "Announcement",
	})
	require.NoError(t, err)

	_, err = svc.SetLocked(context.Background(), author, topic.ID, true)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	locked, err := svc.SetLocked(context.Background(), admin, topic.ID, true)
	require.NoError(t, err)
	require.True(t, locked.IsLocked)

	_, err = svc.Reply(context.Background(), topic.ID, author.ID, "sneaking one in")
	require.ErrorIs(t, err, apperrors.ErrInvalidState)

	pinned, err := svc.SetPinned(context.Background(), admin, topic.ID, true)
	require.NoError(t, err)
	require.True(t, pinned.IsPinned)

	// Pinned topics sort ahead of newer threads.
	_, err = svc.CreateTopic(context.Background(), CreateTopicInput{
		AuthorID: author.ID,
		Title:    "Newer thread",
	})
	require.NoError(t, err)

	topics, total, err := svc.ListTopics(context.Background(), ListTopicsOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, "Announcement", topics[0].Title)
}

func TestForumDeleteTopic(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")

	svc, err := NewForumService(db)
	require.NoError(t, err)

	topic, err := svc.CreateTopic(context.Background(), CreateTopicInput{
		AuthorID: author.ID,
		Title:    "Ephemeral",
	})
	require.NoError(t, err)
	_, err = svc.Reply(context.Background(), topic.ID, other.ID, "a reply")
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteTopic(context.Background(), other, topic.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.DeleteTopic(context.Background(), author, topic.ID))

	_, err = svc.GetTopic(context.Background(), topic.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	var replies int64
	require.NoError(t, db.Model(&models.ForumReply{}).Where("topic_id = ?", topic.ID).Count(&replies).Error)
	require.Zero(t, replies, "replies are removed with the topic")
}
