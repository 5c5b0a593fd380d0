package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/angel7544/mentorconnect/internal/app"
	iauth "github.com/angel7544/mentorconnect/internal/auth"
	"github.com/angel7544/mentorconnect/internal/handlers"
	"github.com/angel7544/mentorconnect/internal/middleware"
	"github.com/angel7544/mentorconnect/internal/realtime"
	"github.com/angel7544/mentorconnect/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	notificationSvc, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(db, jwt)
	if err != nil {
		return nil, err
	}
	profileSvc, err := services.NewProfileService(db)
	if err != nil {
		return nil, err
	}
	mentorshipSvc, err := services.NewMentorshipService(db, notificationSvc)
	if err != nil {
		return nil, err
	}
	eventSvc, err := services.NewEventService(db, notificationSvc)
	if err != nil {
		return nil, err
	}
	messageSvc, err := services.NewMessageService(db, hub, notificationSvc)
	if err != nil {
		return nil, err
	}
	resourceSvc, err := services.NewResourceService(db)
	if err != nil {
		return nil, err
	}
	forumSvc, err := services.NewForumService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	}

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	authHandler := handlers.NewAuthHandler(userSvc)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	// Authenticated auth routes
	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/password", authHandler.ChangePassword)

	// Users
	userHandler := handlers.NewUserHandler(userSvc)
	users := api.Group("/users")
	{
		users.GET("", middleware.RequireAdmin(), userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("/:id/active", middleware.RequireAdmin(), userHandler.SetActive)
	}

	// Profiles and mentor discovery
	profileHandler := handlers.NewProfileHandler(profileSvc)
	api.GET("/profile", profileHandler.GetMine)
	api.PUT("/profile", profileHandler.Update)
	api.GET("/users/:id/profile", profileHandler.GetByUser)
	api.GET("/mentors", profileHandler.ListMentors)

	// Mentorships
	mentorshipHandler := handlers.NewMentorshipHandler(mentorshipSvc)
	mentorships := api.Group("/mentorships")
	{
		mentorships.POST("", mentorshipHandler.Request)
		mentorships.GET("", mentorshipHandler.List)
		mentorships.GET("/:id", mentorshipHandler.Get)
		mentorships.PATCH("/:id/status", mentorshipHandler.UpdateStatus)
		mentorships.POST("/:id/feedback", mentorshipHandler.SubmitFeedback)
	}

	// Events
	eventHandler := handlers.NewEventHandler(eventSvc)
	events := api.Group("/events")
	{
		events.POST("", eventHandler.Create)
		events.GET("", eventHandler.List)
		events.GET("/:id", eventHandler.Get)
		events.PATCH("/:id", eventHandler.Update)
		events.POST("/:id/cancel", eventHandler.Cancel)
		events.DELETE("/:id", eventHandler.Delete)
		events.POST("/:id/register", eventHandler.Register)
		events.POST("/:id/cancel-registration", eventHandler.CancelRegistration)
		events.POST("/:id/attendance/:userId", eventHandler.MarkAttendance)
	}

	// Messages
	messageHandler := handlers.NewMessageHandler(messageSvc)
	messages := api.Group("/messages")
	{
		messages.POST("", messageHandler.Send)
		messages.GET("/conversations", messageHandler.Conversations)
		messages.GET("/conversations/:userId", messageHandler.Conversation)
		messages.GET("/unread", messageHandler.UnreadCount)
	}

	// Resources
	resourceHandler := handlers.NewResourceHandler(resourceSvc)
	resources := api.Group("/resources")
	{
		resources.POST("", resourceHandler.Submit)
		resources.GET("", resourceHandler.List)
		resources.GET("/:id", resourceHandler.Get)
		resources.POST("/:id/approve", middleware.RequireAdmin(), resourceHandler.Approve)
		resources.DELETE("/:id", resourceHandler.Delete)
	}

	// Forum
	forumHandler := handlers.NewForumHandler(forumSvc)
	forum := api.Group("/forum/topics")
	{
		forum.POST("", forumHandler.CreateTopic)
		forum.GET("", forumHandler.ListTopics)
		forum.GET("/:id", forumHandler.GetTopic)
		forum.POST("/:id/replies", forumHandler.Reply)
		forum.POST("/:id/pin", middleware.RequireAdmin(), forumHandler.SetPinned)
		forum.POST("/:id/lock", middleware.RequireAdmin(), forumHandler.SetLocked)
		forum.DELETE("/:id", forumHandler.DeleteTopic)
	}

	// Notifications
	notificationHandler := handlers.NewNotificationHandler(notificationSvc)
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	// Realtime stream. Token auth happens inside the handler so browsers can
	// pass the JWT via query parameter during the websocket upgrade.
	if hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(hub, jwt)
		r.GET("/ws", realtimeHandler.Stream)
	}

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
