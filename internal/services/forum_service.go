package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

// ForumService owns discussion topics and replies. Reply counts and the last
// reply timestamp are denormalised onto the topic row inside the reply
// transaction.
type ForumService struct {
	db  *gorm.DB
	now func() time.Time
}

// ForumOption customises service construction.
type ForumOption func(*ForumService)

// WithForumClock overrides the time source, used by tests.
func WithForumClock(now func() time.Time) ForumOption {
	return func(s *ForumService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewForumService wires the forum store.
func NewForumService(db *gorm.DB, opts ...ForumOption) (*ForumService, error) {
	if db == nil {
		return nil, errors.New("forum service: db is required")
	}
	svc := &ForumService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateTopicInput describes a new discussion thread.
type CreateTopicInput struct {
	AuthorID string
	Title    string
	Body     string
	Category string
}

// ListTopicsOptions filters the topic listing.
type ListTopicsOptions struct {
	Category string
	Limit    int
	Offset   int
}

// CreateTopic starts a discussion thread.
func (s *ForumService) CreateTopic(ctx context.Context, input CreateTopicInput) (*models.ForumTopic, error) {
	ctx = ensureContext(ctx)
	if input.AuthorID == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidation("author_id and title are required")
	}

	topic := models.ForumTopic{
		AuthorID: input.AuthorID,
		Title:    strings.TrimSpace(input.Title),
		Body:     input.Body,
		Category: input.Category,
	}
	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		return nil, fmt.Errorf("forum service: create topic: %w", err)
	}
	return &topic, nil
}

// Reply appends a reply and bumps the topic's denormalised counters.
func (s *ForumService) Reply(ctx context.Context, topicID, authorID, body string) (*models.ForumReply, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidation("reply body is required")
	}

	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.IsLocked {
		return nil, apperrors.ErrInvalidState.WithMessage("topic is locked")
	}

	reply := models.ForumReply{
		TopicID:  topicID,
		AuthorID: authorID,
		Body:     body,
	}
	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.ForumTopic{}).
			Where("id = ?", topicID).
			Updates(map[string]any{
				"reply_count":   gorm.Expr("reply_count + 1"),
				"last_reply_at": now,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("forum service: create reply: %w", err)
	}
	return &reply, nil
}

// GetTopic returns a topic with its replies, oldest reply first.
func (s *ForumService) GetTopic(ctx context.Context, topicID string) (*models.ForumTopic, error) {
	ctx = ensureContext(ctx)

	var topic models.ForumTopic
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.Author").
		First(&topic, "id = ?", topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("forum service: load topic: %w", err)
	}
	return &topic, nil
}

// ListTopics returns threads with pinned entries first, then most recent
// activity.
func (s *ForumService) ListTopics(ctx context.Context, opts ListTopicsOptions) ([]models.ForumTopic, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.ForumTopic{})
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("forum service: count topics: %w", err)
	}

	var rows []models.ForumTopic
	if err := query.
		Preload("Author").
		Order("is_pinned DESC, COALESCE(last_reply_at, created_at) DESC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("forum service: list topics: %w", err)
	}
	return rows, total, nil
}

// SetPinned toggles a topic's pinned flag. Admin only.
func (s *ForumService) SetPinned(ctx context.Context, actor models.User, topicID string, pinned bool) (*models.ForumTopic, error) {
	return s.setFlag(ctx, actor, topicID, "is_pinned", pinned)
}

// SetLocked toggles a topic's locked flag. Admin only. Locked topics reject
// new replies but stay readable.
func (s *ForumService) SetLocked(ctx context.Context, actor models.User, topicID string, locked bool) (*models.ForumTopic, error) {
	return s.setFlag(ctx, actor, topicID, "is_locked", locked)
}

// DeleteTopic removes a thread and its replies. The author may remove their
// own thread; admins may remove anything.
func (s *ForumService) DeleteTopic(ctx context.Context, actor models.User, topicID string) error {
	ctx = ensureContext(ctx)

	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != topic.AuthorID {
		return apperrors.ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", topicID).Delete(&models.ForumReply{}).Error; err != nil {
			return fmt.Errorf("forum service: delete replies: %w", err)
		}
		if err := tx.Delete(&models.ForumTopic{}, "id = ?", topicID).Error; err != nil {
			return fmt.Errorf("forum service: delete topic: %w", err)
		}
		return nil
	})
}

func (s *ForumService) setFlag(ctx context.Context, actor models.User, topicID, column string, value bool) (*models.ForumTopic, error) {
	ctx = ensureContext(ctx)
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(topic).
		Update(column, value).Error; err != nil {
		return nil, fmt.Errorf("forum service: update topic flag: %w", err)
	}
	return s.loadTopic(ctx, topicID)
}

func (s *ForumService) loadTopic(ctx context.Context, id string) (*models.ForumTopic, error) {
	var topic models.ForumTopic
	if err := s.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("forum service: load topic: %w", err)
	}
	return &topic, nil
}
