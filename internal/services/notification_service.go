package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/internal/realtime"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

// NotificationService persists in-app notifications and pushes them to
// connected websocket clients.
type NotificationService struct {
	db  *gorm.DB
	hub *realtime.Hub
	now func() time.Time
}

// NotificationOption customises service construction.
type NotificationOption func(*NotificationService)

// WithNotificationClock overrides the time source, used by tests.
func WithNotificationClock(now func() time.Time) NotificationOption {
	return func(s *NotificationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewNotificationService wires the notification store. The hub may be nil
// when realtime delivery is disabled.
func NewNotificationService(db *gorm.DB, hub *realtime.Hub, opts ...NotificationOption) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	svc := &NotificationService{
		db:  db,
		hub: hub,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// NotificationDTO is the transport shape returned to handlers.
type NotificationDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

// NotificationEventPayload is sent over the notifications stream.
type NotificationEventPayload struct {
	Notification   *NotificationDTO `json:"notification,omitempty"`
	NotificationID string           `json:"notification_id,omitempty"`
}

// CreateNotificationInput describes a notification to record.
type CreateNotificationInput struct {
	UserID   string
	Type     string
	Title    string
	Message  string
	Severity string
	Metadata map[string]any
}

// ListNotificationsOptions filters the notification feed.
type ListNotificationsOptions struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// Create records a notification and broadcasts it to the owner.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)
	if input.UserID == "" || input.Type == "" || input.Title == "" {
		return nil, apperrors.NewValidation("user_id, type, and title are required")
	}

	notification := models.Notification{
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    input.Title,
		Message:  input.Message,
		Severity: defaultIfEmpty(input.Severity, "info"),
	}
	if input.Metadata != nil {
		raw, err := toJSON(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal metadata: %w", err)
		}
		notification.Metadata = raw
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}

	dto := mapNotification(notification)
	s.broadcast(input.UserID, "notification.created", &NotificationEventPayload{Notification: &dto})
	return &dto, nil
}

// List returns notifications for a user, newest first, plus the unread count.
func (s *NotificationService) List(ctx context.Context, userID string, opts ListNotificationsOptions) ([]NotificationDTO, int64, error) {
	ctx = ensureContext(ctx)
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("notification service: list notifications: %w", err)
	}

	var unread int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, fmt.Errorf("notification service: count unread: %w", err)
	}

	return mapNotificationRows(rows), unread, nil
}

// MarkRead sets the read flag on a notification owned by the user.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)
	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}

	notification.IsRead = true
	notification.ReadAt = &now
	dto := mapNotification(notification)
	s.broadcast(userID, "notification.read", &NotificationEventPayload{
		Notification:   &dto,
		NotificationID: notification.ID,
	})
	return &dto, nil
}

// MarkAllRead marks every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": s.now()}).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}
	s.broadcast(userID, "notification.read_all", nil)
	return nil
}

// Delete removes a notification owned by the user.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	s.broadcast(userID, "notification.deleted", &NotificationEventPayload{NotificationID: notificationID})
	return nil
}

// PruneRead deletes read notifications older than the retention window and
// returns how many rows were removed. Used by the maintenance cleaner.
func (s *NotificationService) PruneRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	ctx = ensureContext(ctx)
	cutoff := s.now().Add(-olderThan)
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND read_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: prune read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// notify is the fire-and-forget path used by sibling services. Failures are
// swallowed so a notification hiccup never fails the triggering operation.
func (s *NotificationService) notify(ctx context.Context, input CreateNotificationInput) {
	if s == nil {
		return
	}
	_, _ = s.Create(ctx, input)
}

func (s *NotificationService) broadcast(userID, event string, payload *NotificationEventPayload) {
	if s.hub == nil {
		return
	}
	message := realtime.Message{
		Stream: realtime.StreamNotifications,
		Event:  event,
	}
	if payload != nil {
		message.Data = payload
	}
	s.hub.BroadcastToUser(realtime.StreamNotifications, userID, message)
}

func mapNotificationRows(rows []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Severity:  defaultIfEmpty(row.Severity, "info"),
		Metadata:  decodeJSON(row.Metadata),
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
		ReadAt:    row.ReadAt,
	}
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
