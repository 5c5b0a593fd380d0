package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/auth"
	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/pkg/crypto"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/metrics"
)

// UserService owns account registration, authentication, and admin account
// management.
type UserService struct {
	db  *gorm.DB
	jwt *auth.JWTService
	now func() time.Time
}

// NewUserService wires the account store against the token issuer.
func NewUserService(db *gorm.DB, jwt *auth.JWTService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("user service: jwt service is required")
	}
	return &UserService{
		db:  db,
		jwt: jwt,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// RegisterUserInput describes a self-service signup.
type RegisterUserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult bundles the authenticated user with their access token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ListUsersOptions filters the account listing.
type ListUsersOptions struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Register creates a new active account with the default role. A blank profile
// row is created alongside so availability toggles never need an upsert.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidation("username, email, and password are required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{UserID: user.ID}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("username or email is already taken")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}
	return &user, nil
}

// Authenticate verifies credentials and issues an access token. The login
// identifier matches either username or email.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrForbidden.WithMessage("account is disabled")
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("user service: issue token: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).
		Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &AuthResult{User: &user, Token: token}, nil
}

// GetByID loads an account with its profile.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// List returns accounts matching the filters.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if opts.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var rows []models.User
	if err := query.
		Order("created_at DESC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}
	return rows, total, nil
}

// SetActive enables or disables an account. Admin only; an admin cannot
// disable their own account.
func (s *UserService) SetActive(ctx context.Context, actor models.User, userID string, active bool) (*models.User, error) {
	ctx = ensureContext(ctx)
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if actor.ID == userID && !active {
		return nil, apperrors.ErrInvalidState.WithMessage("cannot disable your own account")
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).
		Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("user service: set active: %w", err)
	}
	user.IsActive = active
	return user, nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	ctx = ensureContext(ctx)
	if len(next) < 8 {
		return apperrors.NewValidation("password must be at least 8 characters")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("user service: load user: %w", err)
	}
	if !crypto.VerifyPassword(user.Password, current) {
		return apperrors.ErrInvalidCredentials
	}

	hashed, err := crypto.HashPassword(next)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).
		Update("password", hashed).Error; err != nil {
		return fmt.Errorf("user service: update password: %w", err)
	}
	return nil
}
