package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/authz"
	"github.com/angel7544/mentorconnect/internal/lifecycle"
	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/metrics"
)

// MentorshipService owns the mentorship lifecycle: requesting, status
// transitions, and feedback. Transitions are validated against the lifecycle
// whitelist before the authorization guard runs, so callers learn a move is
// impossible before they learn it is not theirs to make.
type MentorshipService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

// MentorshipOption customises service construction.
type MentorshipOption func(*MentorshipService)

// WithMentorshipClock overrides the time source, used by tests.
func WithMentorshipClock(now func() time.Time) MentorshipOption {
	return func(s *MentorshipService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMentorshipService wires the mentorship store. Notifications may be nil.
func NewMentorshipService(db *gorm.DB, notifications *NotificationService, opts ...MentorshipOption) (*MentorshipService, error) {
	if db == nil {
		return nil, errors.New("mentorship service: db is required")
	}
	svc := &MentorshipService{
		db:            db,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RequestMentorshipInput describes a mentee's request to a mentor.
type RequestMentorshipInput struct {
	MenteeID          string
	MentorID          string
	RequestMessage    string
	Goals             string
	Topics            []string
	MeetingFrequency  string
	MeetingPreference string
}

// UpdateMentorshipStatusInput describes a requested lifecycle transition.
type UpdateMentorshipStatusInput struct {
	Actor        authz.Actor
	MentorshipID string
	TargetStatus models.MentorshipStatus
	Note         string
}

// SubmitFeedbackInput carries one party's feedback on a mentorship.
type SubmitFeedbackInput struct {
	Actor        authz.Actor
	MentorshipID string
	Rating       int
	Comment      string
}

// ListMentorshipsOptions filters a user's mentorship list.
type ListMentorshipsOptions struct {
	Status models.MentorshipStatus
	Role   string // "mentor", "mentee", or empty for both sides
	Limit  int
	Offset int
}

// Request creates a pending mentorship from mentee to mentor. The mentor must
// be an active account with mentorship availability switched on, and the pair
// must not already hold a pending or active engagement.
func (s *MentorshipService) Request(ctx context.Context, input RequestMentorshipInput) (*models.Mentorship, error) {
	ctx = ensureContext(ctx)
	if input.MenteeID == "" || input.MentorID == "" {
		return nil, apperrors.NewValidation("mentor_id and mentee_id are required")
	}
	if input.MenteeID == input.MentorID {
		return nil, apperrors.NewValidation("mentor and mentee must be different users")
	}

	var mentor models.User
	if err := s.db.WithContext(ctx).First(&mentor, "id = ?", input.MentorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("mentor not found")
		}
		return nil, fmt.Errorf("mentorship service: load mentor: %w", err)
	}
	if !mentor.IsActive {
		return nil, apperrors.ErrInvalidState.WithMessage("mentor account is inactive")
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "user_id = ?", input.MentorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidState.WithMessage("mentor is not accepting mentees")
		}
		return nil, fmt.Errorf("mentorship service: load mentor profile: %w", err)
	}
	if !profile.MentorshipAvailable {
		return nil, apperrors.ErrInvalidState.WithMessage("mentor is not accepting mentees")
	}

	var open int64
	if err := s.db.WithContext(ctx).Model(&models.Mentorship{}).
		Where("mentor_id = ? AND mentee_id = ? AND status IN ?",
			input.MentorID, input.MenteeID,
			[]models.MentorshipStatus{models.MentorshipPending, models.MentorshipActive}).
		Count(&open).Error; err != nil {
		return nil, fmt.Errorf("mentorship service: check existing pair: %w", err)
	}
	if open > 0 {
		return nil, apperrors.ErrConflict.WithMessage("a pending or active mentorship already exists with this mentor")
	}

	topics, err := toJSON(input.Topics)
	if err != nil {
		return nil, fmt.Errorf("mentorship service: marshal topics: %w", err)
	}

	mentorship := models.Mentorship{
		MentorID:          input.MentorID,
		MenteeID:          input.MenteeID,
		Status:            models.MentorshipPending,
		RequestMessage:    input.RequestMessage,
		Goals:             input.Goals,
		Topics:            topics,
		MeetingFrequency:  input.MeetingFrequency,
		MeetingPreference: input.MeetingPreference,
	}
	if err := s.db.WithContext(ctx).Create(&mentorship).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("a pending or active mentorship already exists with this mentor")
		}
		return nil, fmt.Errorf("mentorship service: create mentorship: %w", err)
	}

	s.notifications.notify(ctx, CreateNotificationInput{
		UserID:  input.MentorID,
		Type:    models.NotificationMentorshipRequest,
		Title:   "New mentorship request",
		Message: "You have received a new mentorship request.",
		Metadata: map[string]any{
			"mentorship_id": mentorship.ID,
			"mentee_id":     input.MenteeID,
		},
	})

	return &mentorship, nil
}

// UpdateStatus applies a lifecycle transition. Checks run in a fixed order:
// the target must name a transition event, the event must be whitelisted from
// the current status, and only then is the actor's capability checked.
func (s *MentorshipService) UpdateStatus(ctx context.Context, input UpdateMentorshipStatusInput) (*models.Mentorship, error) {
	ctx = ensureContext(ctx)

	mentorship, err := s.load(ctx, input.MentorshipID)
	if err != nil {
		return nil, err
	}

	event, ok := lifecycle.EventForTarget(input.TargetStatus)
	if !ok {
		metrics.MentorshipTransitions.WithLabelValues(string(input.TargetStatus), "rejected").Inc()
		return nil, apperrors.NewValidation(fmt.Sprintf("%q is not a reachable status", input.TargetStatus))
	}

	next, err := lifecycle.Apply(ctx, mentorship.Status, event)
	if err != nil {
		metrics.MentorshipTransitions.WithLabelValues(string(input.TargetStatus), "rejected").Inc()
		var transitionErr *lifecycle.TransitionError
		if errors.As(err, &transitionErr) {
			return nil, apperrors.ErrInvalidState.WithMessage(
				fmt.Sprintf("cannot move mentorship from %q to %q", mentorship.Status, input.TargetStatus))
		}
		return nil, fmt.Errorf("mentorship service: apply transition: %w", err)
	}

	if !authz.Allowed(input.Actor, relationshipOf(mentorship), actionForEvent(event)) {
		metrics.MentorshipTransitions.WithLabelValues(string(input.TargetStatus), "forbidden").Inc()
		return nil, apperrors.ErrForbidden
	}

	now := s.now()
	updates := map[string]any{
		"status":      next,
		"status_note": input.Note,
	}
	switch next {
	case models.MentorshipActive:
		updates["start_date"] = now
	case models.MentorshipCompleted:
		updates["end_date"] = now
	}

	if err := s.db.WithContext(ctx).Model(mentorship).Updates(updates).Error; err != nil {
		metrics.MentorshipTransitions.WithLabelValues(string(input.TargetStatus), "error").Inc()
		return nil, fmt.Errorf("mentorship service: update status: %w", err)
	}
	mentorship.Status = next
	mentorship.StatusNote = input.Note
	switch next {
	case models.MentorshipActive:
		mentorship.StartDate = &now
	case models.MentorshipCompleted:
		mentorship.EndDate = &now
	}

	metrics.MentorshipTransitions.WithLabelValues(string(next), "success").Inc()
	s.notifyTransition(ctx, mentorship, input.Actor)

	return mentorship, nil
}

// SubmitFeedback records one party's feedback on a mentorship. The slot
// written is derived from the actor's identity, so each side owns exactly one
// slot and re-submission overwrites it. Feedback is accepted in any status.
func (s *MentorshipService) SubmitFeedback(ctx context.Context, input SubmitFeedbackInput) (*models.Mentorship, error) {
	ctx = ensureContext(ctx)

	mentorship, err := s.load(ctx, input.MentorshipID)
	if err != nil {
		return nil, err
	}

	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewValidation("rating must be between 1 and 5")
	}

	// The slot is keyed to the actor, not a request field. An admin has no
	// slot of their own and therefore cannot fabricate either party's entry.
	var column, counterpart string
	switch input.Actor.ID {
	case mentorship.MentorID:
		column = "mentor_feedback"
		counterpart = mentorship.MenteeID
	case mentorship.MenteeID:
		column = "mentee_feedback"
		counterpart = mentorship.MentorID
	default:
		return nil, apperrors.ErrForbidden
	}

	feedback, err := toJSON(models.MentorshipFeedback{
		Rating:  input.Rating,
		Comment: input.Comment,
		Date:    s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("mentorship service: marshal feedback: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(mentorship).Update(column, feedback).Error; err != nil {
		return nil, fmt.Errorf("mentorship service: save feedback: %w", err)
	}
	if column == "mentor_feedback" {
		mentorship.MentorFeedback = feedback
	} else {
		mentorship.MenteeFeedback = feedback
	}

	s.notifications.notify(ctx, CreateNotificationInput{
		UserID:  counterpart,
		Type:    models.NotificationMentorshipReview,
		Title:   "Mentorship feedback received",
		Message: "Your mentorship partner left feedback.",
		Metadata: map[string]any{
			"mentorship_id": mentorship.ID,
		},
	})

	return mentorship, nil
}

// Get returns a mentorship visible to the actor. Only the two parties and
// admins may read a record.
func (s *MentorshipService) Get(ctx context.Context, actor authz.Actor, id string) (*models.Mentorship, error) {
	ctx = ensureContext(ctx)

	var mentorship models.Mentorship
	if err := s.db.WithContext(ctx).
		Preload("Mentor").
		Preload("Mentee").
		First(&mentorship, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("mentorship service: load mentorship: %w", err)
	}

	if actor.Role != models.RoleAdmin && actor.ID != mentorship.MentorID && actor.ID != mentorship.MenteeID {
		return nil, apperrors.ErrForbidden
	}
	return &mentorship, nil
}

// ListForUser returns mentorships where the user is mentor or mentee, newest
// first, optionally filtered by status and side.
func (s *MentorshipService) ListForUser(ctx context.Context, userID string, opts ListMentorshipsOptions) ([]models.Mentorship, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Mentorship{})
	switch opts.Role {
	case "mentor":
		query = query.Where("mentor_id = ?", userID)
	case "mentee":
		query = query.Where("mentee_id = ?", userID)
	default:
		query = query.Where("mentor_id = ? OR mentee_id = ?", userID, userID)
	}
	if opts.Status != "" {
		if !opts.Status.Valid() {
			return nil, 0, apperrors.NewValidation(fmt.Sprintf("unknown status %q", opts.Status))
		}
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("mentorship service: count mentorships: %w", err)
	}

	var rows []models.Mentorship
	if err := query.
		Preload("Mentor").
		Preload("Mentee").
		Order("created_at DESC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("mentorship service: list mentorships: %w", err)
	}
	return rows, total, nil
}

func (s *MentorshipService) load(ctx context.Context, id string) (*models.Mentorship, error) {
	if id == "" {
		return nil, apperrors.NewValidation("mentorship id is required")
	}
	var mentorship models.Mentorship
	if err := s.db.WithContext(ctx).First(&mentorship, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("mentorship service: load mentorship: %w", err)
	}
	return &mentorship, nil
}

// notifyTransition tells the party that did not act about the status change.
func (s *MentorshipService) notifyTransition(ctx context.Context, mentorship *models.Mentorship, actor authz.Actor) {
	recipient := mentorship.MenteeID
	if actor.ID == mentorship.MenteeID {
		recipient = mentorship.MentorID
	}
	s.notifications.notify(ctx, CreateNotificationInput{
		UserID:  recipient,
		Type:    models.NotificationMentorshipStatus,
		Title:   "Mentorship status updated",
		Message: fmt.Sprintf("Your mentorship is now %s.", mentorship.Status),
		Metadata: map[string]any{
			"mentorship_id": mentorship.ID,
			"status":        string(mentorship.Status),
		},
	})
}

func relationshipOf(m *models.Mentorship) authz.Relationship {
	return authz.Relationship{MentorID: m.MentorID, MenteeID: m.MenteeID}
}

func actionForEvent(event lifecycle.Event) authz.Action {
	switch event {
	case lifecycle.EventAccept:
		return authz.ActionAcceptMentorship
	case lifecycle.EventDecline:
		return authz.ActionDeclineMentorship
	case lifecycle.EventCancel:
		return authz.ActionCancelMentorship
	case lifecycle.EventComplete:
		return authz.ActionCompleteMentorship
	default:
		return ""
	}
}
