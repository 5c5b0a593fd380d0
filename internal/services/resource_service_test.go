package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angel7544/mentorconnect/internal/database/testutil"
	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

func TestResourceSubmitAndApprove(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	uploader := seedUser(t, db, "uploader")
	admin := models.User{ID: "admin-1", Username: "admin", Email: "admin@example.com",
		Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	svc, err := NewResourceService(db)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitResourceInput{
		UploaderID: uploader.ID,
		Title:      "Bad type",
		Type:       "podcast",
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	resource, err := svc.Submit(context.Background(), SubmitResourceInput{
		UploaderID:  uploader.ID,
		Title:       "Effective Go",
		Description: "The classic style guide.",
		URL:         "https://go.dev/doc/effective_go",
		Tags:        []string{"go", "style"},
	})
	require.NoError(t, err)
	require.False(t, resource.IsApproved)
	require.Equal(t, models.ResourceArticle, resource.Type, "type defaults to article")

	// Unapproved entries are hidden from the public listing.
	listed, total, err := svc.List(context.Background(), ListResourcesOptions{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, listed)

	// Only admins approve.
	_, err = svc.Approve(context.Background(), uploader, resource.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	approved, err := svc.Approve(context.Background(), admin, resource.ID)
	require.NoError(t, err)
	require.True(t, approved.IsApproved)

	listed, total, err = svc.List(context.Background(), ListResourcesOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Effective Go", listed[0].Title)

	byTag, _, err := svc.List(context.Background(), ListResourcesOptions{Tag: "style"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
}

func TestResourceDeleteOwnership(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	uploader := seedUser(t, db, "uploader")
	other := seedUser(t, db, "other")

	svc, err := NewResourceService(db)
	require.NoError(t, err)

	resource, err := svc.Submit(context.Background(), SubmitResourceInput{
		UploaderID: uploader.ID,
		Title:      "Go by Example",
		Type:       models.ResourceCourse,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), other, resource.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), uploader, resource.ID))

	_, err = svc.Get(context.Background(), resource.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
