package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/auth"
	"github.com/angel7544/mentorconnect/internal/database/testutil"
	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

func newUserService(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "mentorconnect-test"})
	require.NoError(t, err)
	svc, err := NewUserService(db, jwtSvc)
	require.NoError(t, err)
	return svc
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "correct horse",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email, "email is normalised")
	require.Equal(t, models.RoleUser, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "correct horse", user.Password, "password is stored hashed")

	// Registration creates the blank profile row alongside.
	var profile models.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	require.False(t, profile.MentorshipAvailable)

	// Login by username and by email both work.
	result, err := svc.Authenticate(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.NotNil(t, result.User.LastLoginAt)

	result, err = svc.Authenticate(context.Background(), "Alice@Example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, result.User.ID)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserRegisterDuplicate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "alice", Email: "other@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "alice2", Email: "alice@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserSetActiveGating(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "bob", Email: "bob@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	admin := models.User{ID: "admin-1", Username: "admin", Email: "admin@example.com",
		Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	_, err = svc.SetActive(context.Background(), *user, user.ID, false)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.SetActive(context.Background(), admin, admin.ID, false)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)

	disabled, err := svc.SetActive(context.Background(), admin, user.ID, false)
	require.NoError(t, err)
	require.False(t, disabled.IsActive)

	// A disabled account cannot log in even with valid credentials.
	_, err = svc.Authenticate(context.Background(), "bob", "correct horse")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	enabled, err := svc.SetActive(context.Background(), admin, user.ID, true)
	require.NoError(t, err)
	require.True(t, enabled.IsActive)
}

func TestUserChangePassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "carol", Email: "carol@example.com", Password: "old password",
	})
	require.NoError(t, err)

	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), user.ID, "wrong", "new password"),
		apperrors.ErrInvalidCredentials)
	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), user.ID, "old password", "short"),
		apperrors.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "old password", "new password"))

	_, err = svc.Authenticate(context.Background(), "carol", "old password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "carol", "new password")
	require.NoError(t, err)
}

func TestUserListFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db)

	for _, u := range []RegisterUserInput{
		{Username: "dana", Email: "dana@example.com", Password: "correct horse", FirstName: "Dana"},
		{Username: "erin", Email: "erin@example.com", Password: "correct horse", FirstName: "Erin"},
	} {
		_, err := svc.Register(context.Background(), u)
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&models.User{}).
		Where("username = ?", "erin").
		Update("is_active", false).Error)

	all, total, err := svc.List(context.Background(), ListUsersOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)

	active, total, err := svc.List(context.Background(), ListUsersOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "dana", active[0].Username)

	found, total, err := svc.List(context.Background(), ListUsersOptions{Search: "ERIN"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "erin", found[0].Username)
}
