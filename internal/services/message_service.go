package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/internal/realtime"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

// MessageService owns direct messages between users. Sent messages are pushed
// to the recipient's websocket stream when they are connected.
type MessageService struct {
	db            *gorm.DB
	hub           *realtime.Hub
	notifications *NotificationService
	now           func() time.Time
}

// NewMessageService wires the message store. Hub and notifications may be nil.
func NewMessageService(db *gorm.DB, hub *realtime.Hub, notifications *NotificationService) (*MessageService, error) {
	if db == nil {
		return nil, errors.New("message service: db is required")
	}
	return &MessageService{
		db:            db,
		hub:           hub,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// ConversationSummary is one row of the inbox view.
type ConversationSummary struct {
	PartnerID   string          `json:"partner_id"`
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int64           `json:"unread_count"`
}

// Send stores a message and pushes it to the recipient.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, body string) (*models.Message, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidation("message body is required")
	}
	if senderID == recipientID {
		return nil, apperrors.NewValidation("cannot message yourself")
	}

	var recipient models.User
	if err := s.db.WithContext(ctx).First(&recipient, "id = ?", recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("recipient not found")
		}
		return nil, fmt.Errorf("message service: load recipient: %w", err)
	}
	if !recipient.IsActive {
		return nil, apperrors.ErrInvalidState.WithMessage("recipient account is inactive")
	}

	message := models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("message service: create message: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToUser(realtime.StreamMessages, recipientID, realtime.Message{
			Stream: realtime.StreamMessages,
			Event:  "message.received",
			Data:   &message,
		})
	}
	s.notifications.notify(ctx, CreateNotificationInput{
		UserID:  recipientID,
		Type:    models.NotificationMessageReceived,
		Title:   "New message",
		Message: "You have received a new message.",
		Metadata: map[string]any{
			"message_id": message.ID,
			"sender_id":  senderID,
		},
	})
	return &message, nil
}

// Conversation returns the message history between two users, oldest first,
// and marks messages addressed to the caller as read.
func (s *MessageService) Conversation(ctx context.Context, userID, partnerID string, limit, offset int) ([]models.Message, error) {
	ctx = ensureContext(ctx)

	var rows []models.Message
	if err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Limit(clampLimit(limit, 100, 500)).
		Offset(maxInt(offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("message service: load conversation: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", partnerID, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": s.now()}).Error; err != nil {
		return nil, fmt.Errorf("message service: mark conversation read: %w", err)
	}
	return rows, nil
}

// Conversations returns the caller's inbox: one row per partner with the
// latest message and the unread count, most recent first.
func (s *MessageService) Conversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	ctx = ensureContext(ctx)

	var rows []models.Message
	if err := s.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("message service: load messages: %w", err)
	}

	summaries := make([]ConversationSummary, 0)
	index := make(map[string]int)
	for i := range rows {
		row := rows[i]
		partnerID := row.SenderID
		if partnerID == userID {
			partnerID = row.RecipientID
		}
		pos, seen := index[partnerID]
		if !seen {
			index[partnerID] = len(summaries)
			pos = len(summaries)
			summaries = append(summaries, ConversationSummary{PartnerID: partnerID, LastMessage: &rows[i]})
		}
		if row.RecipientID == userID && !row.IsRead {
			summaries[pos].UnreadCount++
		}
	}
	return summaries, nil
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("message service: count unread: %w", err)
	}
	return count, nil
}
