package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/angel7544/mentorconnect/internal/middleware"
	"github.com/angel7544/mentorconnect/internal/models"
	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/response"
)

// MentorshipHandler exposes the mentorship lifecycle over HTTP.
type MentorshipHandler struct {
	mentorships *services.MentorshipService
}

// NewMentorshipHandler constructs a mentorship handler.
func NewMentorshipHandler(mentorships *services.MentorshipService) *MentorshipHandler {
	return &MentorshipHandler{mentorships: mentorships}
}

type requestMentorshipRequest struct {
	MentorID          string   `json:"mentor_id" validate:"required"`
	RequestMessage    string   `json:"request_message"`
	Goals             string   `json:"goals"`
	Topics            []string `json:"topics"`
	MeetingFrequency  string   `json:"meeting_frequency"`
	MeetingPreference string   `json:"meeting_preference"`
}

// Request creates a pending mentorship from the caller to a mentor.
func (h *MentorshipHandler) Request(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input requestMentorshipRequest
	if !bindAndValidate(c, &input) {
		return
	}

	mentorship, err := h.mentorships.Request(requestContext(c), services.RequestMentorshipInput{
		MenteeID:          userID,
		MentorID:          input.MentorID,
		RequestMessage:    input.RequestMessage,
		Goals:             input.Goals,
		Topics:            input.Topics,
		MeetingFrequency:  input.MeetingFrequency,
		MeetingPreference: input.MeetingPreference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, mentorship)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// UpdateStatus applies a lifecycle transition on behalf of the caller.
func (h *MentorshipHandler) UpdateStatus(c *gin.Context) {
	var input updateStatusRequest
	if !bindAndValidate(c, &input) {
		return
	}

	mentorship, err := h.mentorships.UpdateStatus(requestContext(c), services.UpdateMentorshipStatusInput{
		Actor:        currentActor(c),
		MentorshipID: strings.TrimSpace(c.Param("id")),
		TargetStatus: models.MentorshipStatus(input.Status),
		Note:         input.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, mentorship)
}

type feedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// SubmitFeedback records the caller's feedback slot on a mentorship.
func (h *MentorshipHandler) SubmitFeedback(c *gin.Context) {
	var input feedbackRequest
	if !bindAndValidate(c, &input) {
		return
	}

	mentorship, err := h.mentorships.SubmitFeedback(requestContext(c), services.SubmitFeedbackInput{
		Actor:        currentActor(c),
		MentorshipID: strings.TrimSpace(c.Param("id")),
		Rating:       input.Rating,
		Comment:      input.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, mentorship)
}

// Get returns a mentorship visible to the caller.
func (h *MentorshipHandler) Get(c *gin.Context) {
	mentorship, err := h.mentorships.Get(requestContext(c), currentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, mentorship)
}

// List returns the caller's mentorships on either side of the relationship.
func (h *MentorshipHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	mentorships, total, err := h.mentorships.ListForUser(requestContext(c), userID, services.ListMentorshipsOptions{
		Status: models.MentorshipStatus(c.Query("status")),
		Role:   c.Query("role"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, mentorships, &response.Meta{Total: int(total)})
}
