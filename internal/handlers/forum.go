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

// ForumHandler exposes discussion topics and replies over HTTP.
type ForumHandler struct {
	forum *services.ForumService
}

// NewForumHandler constructs a forum handler.
func NewForumHandler(forum *services.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

type createTopicRequest struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// CreateTopic starts a discussion thread.
func (h *ForumHandler) CreateTopic(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input createTopicRequest
	if !bindAndValidate(c, &input) {
		return
	}

	topic, err := h.forum.CreateTopic(requestContext(c), services.CreateTopicInput{
		AuthorID: userID,
		Title:    input.Title,
		Body:     input.Body,
		Category: input.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, topic)
}

// ListTopics returns threads, pinned first.
func (h *ForumHandler) ListTopics(c *gin.Context) {
	topics, total, err := h.forum.ListTopics(requestContext(c), services.ListTopicsOptions{
		Category: c.Query("category"),
		Limit:    parseIntQuery(c, "limit", 50),
		Offset:   parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, topics, &response.Meta{Total: int(total)})
}

// GetTopic returns a thread with its replies.
func (h *ForumHandler) GetTopic(c *gin.Context) {
	topic, err := h.forum.GetTopic(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, topic)
}

type replyRequest struct {
	Body string `json:"body" validate:"required"`
}

// Reply appends a reply to a thread.
func (h *ForumHandler) Reply(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input replyRequest
	if !bindAndValidate(c, &input) {
		return
	}

	reply, err := h.forum.Reply(requestContext(c), strings.TrimSpace(c.Param("id")), userID, input.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reply)
}

type topicFlagRequest struct {
	Value bool `json:"value"`
}

// SetPinned toggles a topic's pinned flag. Admin only.
func (h *ForumHandler) SetPinned(c *gin.Context) {
	var input topicFlagRequest
	if !bindAndValidate(c, &input) {
		return
	}

	topic, err := h.forum.SetPinned(requestContext(c), currentUser(c), strings.TrimSpace(c.Param("id")), input.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, topic)
}

// SetLocked toggles a topic's locked flag. Admin only.
func (h *ForumHandler) SetLocked(c *gin.Context) {
	var input topicFlagRequest
	if !bindAndValidate(c, &input) {
		return
	}

	topic, err := h.forum.SetLocked(requestContext(c), currentUser(c), strings.TrimSpace(c.Param("id")), input.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, topic)
}

// DeleteTopic removes a thread and its replies.
func (h *ForumHandler) DeleteTopic(c *gin.Context) {
	if err := h.forum.DeleteTopic(requestContext(c), currentUser(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
