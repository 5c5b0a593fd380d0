package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/response"
)

// UserHandler exposes account lookup and admin account management.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Get returns a single account with its profile.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// List returns accounts matching the query filters. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	users, total, err := h.users.List(requestContext(c), services.ListUsersOptions{
		Search:     c.Query("search"),
		ActiveOnly: parseBoolQuery(c, "active"),
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Total: int(total)})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive enables or disables an account. Admin only.
func (h *UserHandler) SetActive(c *gin.Context) {
	var input setActiveRequest
	if !bindAndValidate(c, &input) {
		return
	}

	user, err := h.users.SetActive(requestContext(c), currentUser(c), strings.TrimSpace(c.Param("id")), input.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
