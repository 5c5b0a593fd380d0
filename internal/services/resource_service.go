package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/models"
	apperrors "github.com/angel7544/mentorconnect/pkg/errors"
)

var resourceTypes = map[string]struct{}{
	models.ResourceArticle: {},
	models.ResourceVideo:   {},
	models.ResourceBook:    {},
	models.ResourceCourse:  {},
	models.ResourceOther:   {},
}

// ResourceService owns the shared learning library. Submissions sit unapproved
// until an admin reviews them; regular users only see approved entries.
type ResourceService struct {
	db *gorm.DB
}

// NewResourceService wires the resource store.
func NewResourceService(db *gorm.DB) (*ResourceService, error) {
	if db == nil {
		return nil, errors.New("resource service: db is required")
	}
	return &ResourceService{db: db}, nil
}

// SubmitResourceInput describes a new library submission.
type SubmitResourceInput struct {
	UploaderID  string
	Title       string
	Description string
	Type        string
	URL         string
	Tags        []string
}

// ListResourcesOptions filters the library listing.
type ListResourcesOptions struct {
	Type string
	Tag  string
	// IncludeUnapproved is honoured for admins only; handlers gate it.
	IncludeUnapproved bool
	Limit             int
	Offset            int
}

// Submit stores an unapproved resource.
func (s *ResourceService) Submit(ctx context.Context, input SubmitResourceInput) (*models.Resource, error) {
	ctx = ensureContext(ctx)
	if input.UploaderID == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidation("uploader_id and title are required")
	}
	kind := defaultIfEmpty(input.Type, models.ResourceArticle)
	if _, ok := resourceTypes[kind]; !ok {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown resource type %q", input.Type))
	}

	resource := models.Resource{
		UploaderID:  input.UploaderID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Type:        kind,
		URL:         input.URL,
		Tags:        strings.Join(input.Tags, ","),
	}
	if err := s.db.WithContext(ctx).Create(&resource).Error; err != nil {
		return nil, fmt.Errorf("resource service: create resource: %w", err)
	}
	return &resource, nil
}

// Approve marks a resource as reviewed. Admin only.
func (s *ResourceService) Approve(ctx context.Context, actor models.User, resourceID string) (*models.Resource, error) {
	ctx = ensureContext(ctx)
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	resource, err := s.load(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource.IsApproved {
		return resource, nil
	}
	if err := s.db.WithContext(ctx).Model(resource).
		Update("is_approved", true).Error; err != nil {
		return nil, fmt.Errorf("resource service: approve resource: %w", err)
	}
	resource.IsApproved = true
	return resource, nil
}

// Delete removes a resource. The uploader may remove their own submission;
// admins may remove anything.
func (s *ResourceService) Delete(ctx context.Context, actor models.User, resourceID string) error {
	ctx = ensureContext(ctx)

	resource, err := s.load(ctx, resourceID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != resource.UploaderID {
		return apperrors.ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(resource).Error; err != nil {
		return fmt.Errorf("resource service: delete resource: %w", err)
	}
	return nil
}

// Get returns a single resource.
func (s *ResourceService) Get(ctx context.Context, resourceID string) (*models.Resource, error) {
	ctx = ensureContext(ctx)
	return s.load(ctx, resourceID)
}

// List returns library entries, newest first.
func (s *ResourceService) List(ctx context.Context, opts ListResourcesOptions) ([]models.Resource, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Resource{})
	if !opts.IncludeUnapproved {
		query = query.Where("is_approved = ?", true)
	}
	if opts.Type != "" {
		query = query.Where("type = ?", opts.Type)
	}
	if opts.Tag != "" {
		query = query.Where("tags LIKE ?", "%"+opts.Tag+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("resource service: count resources: %w", err)
	}

	var rows []models.Resource
	if err := query.
		Preload("Uploader").
		Order("created_at DESC").
		Limit(clampLimit(opts.Limit, 50, 200)).
		Offset(maxInt(opts.Offset, 0)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("resource service: list resources: %w", err)
	}
	return rows, total, nil
}

func (s *ResourceService) load(ctx context.Context, id string) (*models.Resource, error) {
	var resource models.Resource
	if err := s.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("resource service: load resource: %w", err)
	}
	return &resource, nil
}
