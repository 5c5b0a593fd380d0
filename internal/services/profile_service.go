package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

// ProfileService owns the mentorship-facing profile attached to each account,
// including the availability flag that gates incoming mentorship requests.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService wires the profile store.
func NewProfileService(db *gorm.DB) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	return &ProfileService{db: db}, nil
}

// UpdateProfileInput carries optional field changes. Nil pointers leave the
// stored value untouched.
type UpdateProfileInput struct {
	Headline            *string
	Bio                 *string
	Skills              []string
	Interests           []string
	YearsExperience     *int
	LinkedInURL         *string
	MentorshipAvailable *bool
	MaxMentees          *int
}

// ListMentorsOptions filters the mentor directory.
type ListMentorsOptions struct {
	Skill  string
	Limit  int
	Offset int
}

// GetByUserID loads a user's profile.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	if err := s.db.WithContext(ctx).
		Preload("User").
		First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("profile service: load profile: %w", err)
	}
	return &profile, nil
}

// Update applies field changes to the caller's own profile.
func (s *ProfileService) Update(ctx context.Context, userID string, input UpdateProfileInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Headline != nil {
		updates["headline"] = *input.Headline
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Skills != nil {
		raw, err := toJSON(input.Skills)
		if err != nil {
			return nil, fmt.Errorf("profile service: marshal skills: %w", err)
		}
		updates["skills"] = raw
	}
	if input.Interests != nil {
		raw, err := toJSON(input.Interests)
		if err != nil {
			return nil, fmt.Errorf("profile service: marshal interests: %w", err)
		}
		updates["interests"] = raw
	}
	if input.YearsExperience != nil {
		if *input.YearsExperience < 0 {
			return nil, apperrors.NewValidation("years_experience cannot be negative")
		}
		updates["years_experience"] = *input.YearsExperience
	}
	if input.LinkedInURL != nil {
		updates["linked_in_url"] = *input.LinkedInURL
	}
	if input.MentorshipAvailable != nil {
		updates["mentorship_available"] = *input.MentorshipAvailable
	}
	if input.MaxMentees != nil {
		if *input.MaxMentees < 1 {
			return nil, apperrors.NewValidation("max_mentees must be at least 1")
		}
		updates["max_mentees"] = *input.MaxMentees
	}

	if len(updates) == 0 {
		return profile, nil
	}
	if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("profile service: update profile: %w", err)
	}
	return s.GetByUserID(ctx, userID)
}

// SetAvailability flips the mentorship availability flag. Turning it off does
// not touch mentorships already pending or active.
func (s *ProfileService) SetAvailability(ctx context.Context, userID string, available bool) (*models.Profile, error) {
	return s.Update(ctx, userID, UpdateProfileInput{MentorshipAvailable: &available})
}

// ListAvailableMentors returns profiles accepting mentees, most experienced
// first. The skill filter matches against the JSON skills list.
func (s *ProfileService) ListAvailableMentors(ctx context.Context, opts ListMentorsOptions) ([]models.Profile, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id AND users.is_active = ? AND users.deleted_at IS NULL", true).
		Where("profiles.mentorship_available = ?", true)
	if opts.Skill != "" {
		query = query.Where("profiles.skills LIKE ?", "%\""+opts.Skill+"\"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("profile service: count mentors: %w", err)
	}

	var rows []models.Profile
	if err := query.
		Preload("User").
		Order("profiles.years_experience DESC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("profile service: list mentors: %w", err)
	}
	return rows, total, nil
}
