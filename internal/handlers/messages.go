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

// MessageHandler exposes direct messaging over HTTP.
type MessageHandler struct {
	messages *services.MessageService
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Body        string `json:"body" validate:"required"`
}

// Send delivers a message from the caller to a recipient.
func (h *MessageHandler) Send(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input sendMessageRequest
	if !bindAndValidate(c, &input) {
		return
	}

	message, err := h.messages.Send(requestContext(c), userID, input.RecipientID, input.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// Conversation returns the message history with one partner and marks the
// caller's incoming messages read.
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	history, err := h.messages.Conversation(requestContext(c), userID,
		strings.TrimSpace(c.Param("userId")),
		parseIntQuery(c, "limit", 100),
		parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, history)
}

// Conversations returns the caller's inbox summary.
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	inbox, err := h.messages.Conversations(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, inbox)
}

// UnreadCount returns the caller's unread message count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	count, err := h.messages.UnreadCount(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}
