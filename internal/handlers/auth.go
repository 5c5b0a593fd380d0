package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angel7544/mentorconnect/internal/middleware"
	"github.com/angel7544/mentorconnect/internal/services"
	"github.com/angel7544/mentorconnect/pkg/errors"
	"github.com/angel7544/mentorconnect/pkg/response"
)

// AuthHandler exposes signup, login, and account self-service endpoints.
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterUserInput
	if !bindAndValidate(c, &input) {
		return
	}

	user, err := h.users.Register(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if !bindAndValidate(c, &input) {
		return
	}

	result, err := h.users.Authenticate(requestContext(c), input.Identifier, input.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Me returns the authenticated user's account and profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword rotates the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input changePasswordRequest
	if !bindAndValidate(c, &input) {
		return
	}

	if err := h.users.ChangePassword(requestContext(c), userID, input.CurrentPassword, input.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"changed": true})
}
