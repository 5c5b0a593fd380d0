package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/database/testutil"
	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

func seedUserWithProfile(t *testing.T, db *gorm.DB, id string, available bool, experience int, skills []string) models.User {
	t.Helper()
	user := models.User{
		ID:       id,
		Username: id,
		Email:    id + "@example.com",
		Password: "secret",
	}
	require.NoError(t, db.Create(&user).Error)

	raw, err := json.Marshal(skills)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Profile{
		UserID:              user.ID,
		MentorshipAvailable: available,
		YearsExperience:     experience,
		Skills:              raw,
	}).Error)
	return user
}

func TestProfileUpdate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUserWithProfile(t, db, "user-1", false, 0, nil)

	svc, err := NewProfileService(db)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, UpdateProfileInput{
		Headline:        strPtr("Backend engineer"),
		Skills:          []string{"go", "postgres"},
		YearsExperience: intPtr(7),
	})
	require.NoError(t, err)
	require.Equal(t, "Backend engineer", updated.Headline)
	require.Equal(t, 7, updated.YearsExperience)

	var skills []string
	require.NoError(t, json.Unmarshal(updated.Skills, &skills))
	require.Equal(t, []string{"go", "postgres"}, skills)

	_, err = svc.Update(context.Background(), user.ID, UpdateProfileInput{YearsExperience: intPtr(-1)})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.Update(context.Background(), user.ID, UpdateProfileInput{MaxMentees: intPtr(0)})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Update(context.Background(), "missing-user", UpdateProfileInput{})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileSetAvailability(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUserWithProfile(t, db, "user-1", false, 3, nil)

	svc, err := NewProfileService(db)
	require.NoError(t, err)

	profile, err := svc.SetAvailability(context.Background(), user.ID, true)
	require.NoError(t, err)
	require.True(t, profile.MentorshipAvailable)

	profile, err = svc.SetAvailability(context.Background(), user.ID, false)
	require.NoError(t, err)
	require.False(t, profile.MentorshipAvailable)
}

func TestProfileListAvailableMentors(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedUserWithProfile(t, db, "senior", true, 12, []string{"go", "kubernetes"})
	seedUserWithProfile(t, db, "junior", true, 2, []string{"python"})
	seedUserWithProfile(t, db, "hidden", false, 20, []string{"go"})
	inactive := seedUserWithProfile(t, db, "retired", true, 15, []string{"go"})
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", inactive.ID).
		Update("is_active", false).Error)

	svc, err := NewProfileService(db)
	require.NoError(t, err)

	mentors, total, err := svc.ListAvailableMentors(context.Background(), ListMentorsOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, "senior", mentors[0].UserID, "most experienced first")
	require.NotNil(t, mentors[0].User)

	goMentors, total, err := svc.ListAvailableMentors(context.Background(), ListMentorsOptions{Skill: "go"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "senior", goMentors[0].UserID)
}
