package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/angel7544/mentorconnect/internal/middleware"
	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/response"
)

// EventHandler exposes event management and registration over HTTP.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Title                string     `json:"title" validate:"required"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	Location             string     `json:"location"`
	IsVirtual            bool       `json:"is_virtual"`
	MeetingLink          string     `json:"meeting_link"`
	StartDate            time.Time  `json:"start_date" validate:"required"`
	EndDate              time.Time  `json:"end_date" validate:"required"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Capacity             *int       `json:"capacity"`
	IsPaid               bool       `json:"is_paid"`
	Price                float64    `json:"price"`
}

// Create stores a new event organised by the caller.
func (h *EventHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input createEventRequest
	if !bindAndValidate(c, &input) {
		return
	}

	event, err := h.events.Create(requestContext(c), services.CreateEventInput{
		OrganizerID:          userID,
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
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

type updateEventRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Category             *string    `json:"category"`
	Location             *string    `json:"location"`
	IsVirtual            *bool      `json:"is_virtual"`
	MeetingLink          *string    `json:"meeting_link"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Capacity             *int       `json:"capacity"`
	IsPaid               *bool      `json:"is_paid"`
	Price                *float64   `json:"price"`
}

// Update applies partial changes to an event the caller organises.
func (h *EventHandler) Update(c *gin.Context) {
	var input updateEventRequest
	if !bindAndValidate(c, &input) {
		return
	}

	event, err := h.events.Update(requestContext(c), currentActor(c), strings.TrimSpace(c.Param("id")), services.UpdateEventInput{
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
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Cancel marks an event as cancelled.
func (h *EventHandler) Cancel(c *gin.Context) {
	event, err := h.events.Cancel(requestContext(c), currentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Delete removes an event and its registrations.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(requestContext(c), currentActor(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Get returns an event with its attendee list.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// List returns events matching the query filters.
func (h *EventHandler) List(c *gin.Context) {
	events, total, err := h.events.List(requestContext(c), services.ListEventsOptions{
		Category:     c.Query("category"),
		OrganizerID:  c.Query("organizer_id"),
		UpcomingOnly: parseBoolQuery(c, "upcoming"),
		Limit:        parseIntQuery(c, "limit", 50),
		Offset:       parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, events, &response.Meta{Total: int(total)})
}

// Register adds the caller to an event's attendee list.
func (h *EventHandler) Register(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	attendee, err := h.events.Register(requestContext(c), strings.TrimSpace(c.Param("id")), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, attendee)
}

// CancelRegistration flips the caller's registration to cancelled.
func (h *EventHandler) CancelRegistration(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.events.CancelRegistration(requestContext(c), strings.TrimSpace(c.Param("id")), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// MarkAttendance flags a registered attendee as attended. Organizer only.
func (h *EventHandler) MarkAttendance(c *gin.Context) {
	attendee, err := h.events.MarkAttendance(requestContext(c), currentActor(c),
		strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("userId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, attendee)
}
