package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/logger"
)

const (
	defaultNotificationRetention = 30 * 24 * time.Hour
	defaultUserPurgeRetention    = 90 * 24 * time.Hour
	defaultSchedule              = "@daily"
)

// Cleaner coordinates background maintenance tasks such as pruning read
// notifications and purging accounts that were soft deleted long ago.
type Cleaner struct {
	db            *gorm.DB
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	enabled       bool

	schedule              string
	notificationRetention time.Duration
	userPurgeRetention    time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification shared by the cleanup jobs.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithNotificationRetention adjusts how long read notifications are kept.
func WithNotificationRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.notificationRetention = retention
		}
	}
}

// WithUserPurgeRetention adjusts how long soft deleted accounts linger before
// their rows are removed for good.
func WithUserPurgeRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.userPurgeRetention = retention
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, notifications *services.NotificationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                    db,
		notifications:         notifications,
		now:                   time.Now,
		schedule:              defaultSchedule,
		notificationRetention: defaultNotificationRetention,
		userPurgeRetention:    defaultUserPurgeRetention,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.notifications != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.notifications != nil {
		if _, err := c.cron.AddFunc(c.schedule, func() {
			ctx := context.Background()
			if _, err := c.notifications.PruneRead(ctx, c.notificationRetention); err != nil {
				c.log.Warn("notification cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.schedule, func() {
			ctx := context.Background()
			if _, err := PurgeDeletedUsers(ctx, c.db, c.now().Add(-c.userPurgeRetention)); err != nil {
				c.log.Warn("deleted user purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.notifications != nil {
		if _, err := c.notifications.PruneRead(ctx, c.notificationRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := PurgeDeletedUsers(ctx, c.db, c.now().Add(-c.userPurgeRetention)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// PurgeDeletedUsers permanently removes accounts that were soft deleted before
// the cutoff, along with their profile rows.
func PurgeDeletedUsers(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("purge deleted users: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var purged int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Unscoped().Model(&models.User{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("collect candidates: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("user_id IN ?", ids).Delete(&models.Profile{}).Error; err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
		if err := tx.Where("user_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("notifications: %w", err)
		}

		result := tx.Unscoped().Where("id IN ?", ids).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("users: %w", result.Error)
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge deleted users: %w", err)
	}
	return purged, nil
}
