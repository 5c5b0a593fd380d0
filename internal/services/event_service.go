package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/authz"
	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/metrics"
)

// EventService owns organizer-run events and their attendee lists. The
// registered/waitlisted decision is made once at registration time from the
// capacity count; later cancellations never promote waitlisted attendees.
//
// The capacity check and the attendee insert are two separate statements, so
// two concurrent registrations can both pass the count and land as registered
// past capacity. That matches the upstream behavior this service replaces.
type EventService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

// EventOption customises service construction.
type EventOption func(*EventService)

// WithEventClock overrides the time source, used by tests.
func WithEventClock(now func() time.Time) EventOption {
	return func(s *EventService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewEventService wires the event store. Notifications may be nil.
func NewEventService(db *gorm.DB, notifications *NotificationService, opts ...EventOption) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	svc := &EventService{
		db:            db,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateEventInput describes a new event.
type CreateEventInput struct {
	OrganizerID          string
	Title                string
	Description          string
	Category             string
	Location             string
	IsVirtual            bool
	MeetingLink          string
	StartDate            time.Time
	EndDate              time.Time
	RegistrationDeadline *time.Time
	Capacity             *int
	IsPaid               bool
	Price                float64
}

// UpdateEventInput carries optional field changes. Nil pointers leave the
// stored value untouched.
type UpdateEventInput struct {
	Title                *string
	Description          *string
	Category             *string
	Location             *string
	IsVirtual            *bool
	MeetingLink          *string
	StartDate            *time.Time
	EndDate              *time.Time
	RegistrationDeadline *time.Time
	Capacity             *int
	IsPaid               *bool
	Price                *float64
}

// ListEventsOptions filters the event listing.
type ListEventsOptions struct {
	Category    string
	OrganizerID string
	// UpcomingOnly keeps events whose start date is still ahead of now. The
	// filter works from dates, not the stored status column, which can lag.
	UpcomingOnly bool
	Limit        int
	Offset       int
}

// Create validates dates and stores a new upcoming event.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)
	if input.OrganizerID == "" {
		return nil, apperrors.NewValidation("organizer_id is required")
	}
	if input.Title == "" {
		return nil, apperrors.NewValidation("title is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, apperrors.NewValidation("start_date and end_date are required")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperrors.NewValidation("end_date must be after start_date")
	}
	if input.RegistrationDeadline != nil && input.RegistrationDeadline.After(input.StartDate) {
		return nil, apperrors.NewValidation("registration_deadline must not be after start_date")
	}
	if input.Capacity != nil && *input.Capacity < 1 {
		return nil, apperrors.NewValidation("capacity must be at least 1")
	}

	event := models.Event{
		OrganizerID:          input.OrganizerID,
		Title:                input.Title,
		Description:          input.Description,
		Category:             input.Category,
		Location:             input.Location,
		IsVirtual:            input.IsVirtual,
		MeetingLink:          input.MeetingLink,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		RegistrationDeadline: input.RegistrationDeadline,
		Capacity:             input.Capacity,
		IsPaid:               input.IsPaid,
		Price:                input.Price,
	}
	event.Status = event.DerivedStatus(s.now())

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("event service: create event: %w", err)
	}
	return &event, nil
}

// Update applies field changes to an organizer-owned event. The stored status
// column is recomputed only when the update touches a date field; an event
// left alone keeps whatever status it was last written with.
func (s *EventService) Update(ctx context.Context, actor authz.Actor, eventID string, input UpdateEventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	event, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.Relationship{OrganizerID: event.OrganizerID}, authz.ActionManageEvent) {
		return nil, apperrors.ErrForbidden
	}
	if event.Status == models.EventCancelled {
		return nil, apperrors.ErrInvalidState.WithMessage("cancelled events cannot be updated")
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.IsVirtual != nil {
		updates["is_virtual"] = *input.IsVirtual
	}
	if input.MeetingLink != nil {
		updates["meeting_link"] = *input.MeetingLink
	}
	if input.Capacity != nil {
		if *input.Capacity < 1 {
			return nil, apperrors.NewValidation("capacity must be at least 1")
		}
		updates["capacity"] = *input.Capacity
	}
	if input.IsPaid != nil {
		updates["is_paid"] = *input.IsPaid
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	datesTouched := false
	start, end := event.StartDate, event.EndDate
	if input.StartDate != nil {
		start = *input.StartDate
		updates["start_date"] = start
		datesTouched = true
	}
	if input.EndDate != nil {
		end = *input.EndDate
		updates["end_date"] = end
		datesTouched = true
	}

	deadline := event.RegistrationDeadline
	if input.RegistrationDeadline != nil {
		deadline = input.RegistrationDeadline
		updates["registration_deadline"] = *input.RegistrationDeadline
	}
	if (datesTouched || input.RegistrationDeadline != nil) && deadline != nil && deadline.After(start) {
		return nil, apperrors.NewValidation("registration_deadline must not be after start_date")
	}

	if datesTouched {
		if !end.After(start) {
			return nil, apperrors.NewValidation("end_date must be after start_date")
		}
		event.StartDate = start
		event.EndDate = end
		updates["status"] = event.DerivedStatus(s.now())
	}

	if len(updates) == 0 {
		return event, nil
	}
	if err := s.db.WithContext(ctx).Model(event).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("event service: update event: %w", err)
	}
	return s.load(ctx, eventID)
}

// Cancel marks an event cancelled. Existing registrations are left in place.
func (s *EventService) Cancel(ctx context.Context, actor authz.Actor, eventID string) (*models.Event, error) {
	ctx = ensureContext(ctx)

	event, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.Relationship{OrganizerID: event.OrganizerID}, authz.ActionManageEvent) {
		return nil, apperrors.ErrForbidden
	}
	if event.Status == models.EventCancelled {
		return nil, apperrors.ErrInvalidState.WithMessage("event is already cancelled")
	}

	if err := s.db.WithContext(ctx).Model(event).
		Update("status", models.EventCancelled).Error; err != nil {
		return nil, fmt.Errorf("event service: cancel event: %w", err)
	}
	event.Status = models.EventCancelled
	return event, nil
}

// Delete removes an event and its attendee rows.
func (s *EventService) Delete(ctx context.Context, actor authz.Actor, eventID string) error {
	ctx = ensureContext(ctx)

	event, err := s.load(ctx, eventID)
	if err != nil {
		return err
	}
	if !authz.Allowed(actor, authz.Relationship{OrganizerID: event.OrganizerID}, authz.ActionManageEvent) {
		return apperrors.ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventAttendee{}).Error; err != nil {
			return fmt.Errorf("event service: delete attendees: %w", err)
		}
		if err := tx.Delete(&models.Event{}, "id = ?", eventID).Error; err != nil {
			return fmt.Errorf("event service: delete event: %w", err)
		}
		return nil
	})
}

// Register adds a user to the attendee list. The assigned status is decided
// here, once: registered while the non-cancelled count is under capacity,
// waitlisted after. Free events are marked paid on entry.
func (s *EventService) Register(ctx context.Context, eventID, userID string) (*models.EventAttendee, error) {
	ctx = ensureContext(ctx)
	if userID == "" {
		return nil, apperrors.NewValidation("user_id is required")
	}

	event, err := s.load(ctx, eventID)
	if err != nil {
		metrics.EventRegistrations.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if event.Status == models.EventCancelled {
		metrics.EventRegistrations.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrInvalidState.WithMessage("event is cancelled")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.EventAttendee{}).
		Where("event_id = ? AND user_id = ? AND status <> ?", eventID, userID, models.AttendeeCancelled).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("event service: check existing registration: %w", err)
	}
	if existing > 0 {
		metrics.EventRegistrations.WithLabelValues("duplicate").Inc()
		return nil, apperrors.ErrConflict.WithMessage("user is already registered for this event")
	}

	now := s.now()
	if event.RegistrationDeadline != nil && now.After(*event.RegistrationDeadline) {
		metrics.EventRegistrations.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrInvalidState.WithMessage("registration deadline has passed")
	}

	status := models.AttendeeRegistered
	if event.Capacity != nil {
		var taken int64
		if err := s.db.WithContext(ctx).Model(&models.EventAttendee{}).
			Where("event_id = ? AND status <> ?", eventID, models.AttendeeCancelled).
			Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("event service: count attendees: %w", err)
		}
		if taken >= int64(*event.Capacity) {
			status = models.AttendeeWaitlisted
		}
	}

	attendee := models.EventAttendee{
		EventID:          eventID,
		UserID:           userID,
		RegistrationDate: now,
		HasPaid:          !event.IsPaid,
		Status:           status,
	}
	if err := s.db.WithContext(ctx).Create(&attendee).Error; err != nil {
		metrics.EventRegistrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("event service: create registration: %w", err)
	}

	metrics.EventRegistrations.WithLabelValues(string(status)).Inc()
	s.notifications.notify(ctx, CreateNotificationInput{
		UserID:  event.OrganizerID,
		Type:    models.NotificationEventRegistration,
		Title:   "New event registration",
		Message: fmt.Sprintf("A new attendee registered for %s.", event.Title),
		Metadata: map[string]any{
			"event_id": event.ID,
			"user_id":  userID,
			"status":   string(status),
		},
	})
	return &attendee, nil
}

// CancelRegistration flips the caller's registration to cancelled in place.
// The row is kept for history and nobody on the waitlist is promoted.
func (s *EventService) CancelRegistration(ctx context.Context, eventID, userID string) error {
	ctx = ensureContext(ctx)

	var attendee models.EventAttendee
	if err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND status <> ?", eventID, userID, models.AttendeeCancelled).
		First(&attendee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound.WithMessage("no active registration for this event")
		}
		return fmt.Errorf("event service: load registration: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&attendee).
		Update("status", models.AttendeeCancelled).Error; err != nil {
		return fmt.Errorf("event service: cancel registration: %w", err)
	}
	return nil
}

// MarkAttendance lets the organizer flag a registered attendee as attended.
func (s *EventService) MarkAttendance(ctx context.Context, actor authz.Actor, eventID, userID string) (*models.EventAttendee, error) {
	ctx = ensureContext(ctx)

	event, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.Relationship{OrganizerID: event.OrganizerID}, authz.ActionManageEvent) {
		return nil, apperrors.ErrForbidden
	}

	var attendee models.EventAttendee
	if err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("event service: load registration: %w", err)
	}
	if attendee.Status != models.AttendeeRegistered {
		return nil, apperrors.ErrInvalidState.WithMessage("only registered attendees can be marked attended")
	}

	if err := s.db.WithContext(ctx).Model(&attendee).
		Update("status", models.AttendeeAttended).Error; err != nil {
		return nil, fmt.Errorf("event service: mark attendance: %w", err)
	}
	attendee.Status = models.AttendeeAttended
	return &attendee, nil
}

// Get returns an event with its attendee list.
func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	ctx = ensureContext(ctx)

	var event models.Event
	if err := s.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Attendees").
		First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("event service: load event: %w", err)
	}
	return &event, nil
}

// List returns events matching the filters, soonest first.
func (s *EventService) List(ctx context.Context, opts ListEventsOptions) ([]models.Event, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Event{})
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.OrganizerID != "" {
		query = query.Where("organizer_id = ?", opts.OrganizerID)
	}
	if opts.UpcomingOnly {
		query = query.Where("start_date > ? AND status <> ?", s.now(), models.EventCancelled)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("event service: count events: %w", err)
	}

	var rows []models.Event
	if err := query.
		Order("start_date ASC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("event service: list events: %w", err)
	}
	return rows, total, nil
}

func (s *EventService) load(ctx context.Context, id string) (*models.Event, error) {
	if id == "" {
		return nil, apperrors.NewValidation("event id is required")
	}
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("event service: load event: %w", err)
	}
	return &event, nil
}
