package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/angel7544/mentorconnect/internal/middleware"
	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/response"
)

// ResourceHandler exposes the shared learning library over HTTP.
type ResourceHandler struct {
	resources *services.ResourceService
}

// NewResourceHandler constructs a resource handler.
func NewResourceHandler(resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

type submitResourceRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
}

// Submit stores a new resource pending admin approval.
func (h *ResourceHandler) Submit(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input submitResourceRequest
	if !bindAndValidate(c, &input) {
		return
	}

	resource, err := h.resources.Submit(requestContext(c), services.SubmitResourceInput{
		UploaderID:  userID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		URL:         input.URL,
		Tags:        input.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resource)
}

// List returns library entries. Unapproved entries are only included for
// admins asking for them.
func (h *ResourceHandler) List(c *gin.Context) {
	user := currentUser(c)
	includeUnapproved := parseBoolQuery(c, "include_unapproved") && user.IsAdmin()

	resources, total, err := h.resources.List(requestContext(c), services.ListResourcesOptions{
		Type:              c.Query("type"),
		Tag:               c.Query("tag"),
		IncludeUnapproved: includeUnapproved,
		Limit:             parseIntQuery(c, "limit", 50),
		Offset:            parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resources, &response.Meta{Total: int(total)})
}

// Get returns a single resource.
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.resources.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resource)
}

// Approve marks a resource as reviewed. Admin only.
func (h *ResourceHandler) Approve(c *gin.Context) {
	resource, err := h.resources.Approve(requestContext(c), currentUser(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resource)
}

// Delete removes a resource owned by the caller, or any resource for admins.
func (h *ResourceHandler) Delete(c *gin.Context) {
	if err := h.resources.Delete(requestContext(c), currentUser(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
