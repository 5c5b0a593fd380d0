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

// ProfileHandler exposes profile management and the mentor directory.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMine returns the caller's profile.
func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.GetByUserID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// GetByUser returns another user's profile.
func (h *ProfileHandler) GetByUser(c *gin.Context) {
	profile, err := h.profiles.GetByUserID(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Headline            *string  `json:"headline"`
	Bio                 *string  `json:"bio"`
	Skills              []string `json:"skills"`
	Interests           []string `json:"interests"`
	YearsExperience     *int     `json:"years_experience"`
	LinkedInURL         *string  `json:"linkedin_url"`
	MentorshipAvailable *bool    `json:"mentorship_available"`
	MaxMentees          *int     `json:"max_mentees"`
}

// Update applies partial changes to the caller's profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input updateProfileRequest
	if !bindAndValidate(c, &input) {
		return
	}

	profile, err := h.profiles.Update(requestContext(c), userID, services.UpdateProfileInput{
		Headline:            input.Headline,
		Bio:                 input.Bio,
		Skills:              input.Skills,
		Interests:           input.Interests,
		YearsExperience:     input.YearsExperience,
		LinkedInURL:         input.LinkedInURL,
		MentorshipAvailable: input.MentorshipAvailable,
		MaxMentees:          input.MaxMentees,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// ListMentors returns the directory of profiles currently accepting mentees.
func (h *ProfileHandler) ListMentors(c *gin.Context) {
	mentors, total, err := h.profiles.ListAvailableMentors(requestContext(c), services.ListMentorsOptions{
		Skill:  c.Query("skill"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, mentors, &response.Meta{Total: int(total)})
}
