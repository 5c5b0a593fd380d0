package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/angel7544/mentorconnect/internal/authz"
	"github.com/angel7544/mentorconnect/internal/middleware"
	"github.com/angel7544/mentorconnect/internal/models"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentActor rebuilds the authorization actor from the authenticated request.
func currentActor(c *gin.Context) authz.Actor {
	return middleware.ActorFromContext(c)
}

// currentUser returns a minimal user carrying the authenticated identity and
// role. Sufficient for ownership and admin checks without a DB round trip.
func currentUser(c *gin.Context) models.User {
	return models.User{
		ID:   c.GetString(middleware.CtxUserIDKey),
		Role: c.GetString(middleware.CtxRoleKey),
	}
}
