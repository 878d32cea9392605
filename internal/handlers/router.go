package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/live"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
	"github.com/tommyfonseca7/teams-coms-public/pkg/utils"
)

// Deps is everything the router needs.
type Deps struct {
	Auth     *services.AuthService
	Activity *services.ActivityService
	Team     *services.TeamService
	News     *services.NewsService
	Events   *services.EventService
	Tasks    *services.TaskService
	Schedule *services.ScheduleService
	Chat     *services.ChatService

	// Hub is optional; without it the live routes are not mounted.
	Hub *live.Hub
	// LiveContext bounds websocket streams. Defaults to context.Background.
	LiveContext context.Context

	AllowedOrigins []string
	MaxUploadSize  int64
}

// RegisterValidations installs the custom binding tags on gin's validator.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return utils.RegisterValidations(v)
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) (*gin.Engine, error) {
	if err := RegisterValidations(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORS(d.AllowedOrigins),
	)

	authHandler := NewAuthHandler(d.Auth)
	homeHandler := NewHomeHandler(d.Activity)
	teamHandler := NewTeamHandler(d.Team)
	newsHandler := NewNewsHandler(d.News, d.MaxUploadSize)
	eventHandler := NewEventHandler(d.Events)
	taskHandler := NewTaskHandler(d.Tasks)
	scheduleHandler := NewScheduleHandler(d.Schedule, d.MaxUploadSize)
	chatHandler := NewChatHandler(d.Chat)

	authRequired := middleware.AuthMiddleware(d.Auth)
	managerOnly := middleware.RequireManager(d.Team)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Aroeira Team API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("")
			authProtected.Use(authRequired)
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.POST("/refresh-token", authHandler.RefreshToken)
				authProtected.POST("/update-fcm-token", authHandler.UpdateFCMToken)
			}
		}

		protected := api.Group("")
		protected.Use(authRequired)

		home := protected.Group("/home")
		{
			home.GET("", homeHandler.GetHome)
			home.POST("/seen", homeHandler.MarkSeen)
		}

		team := protected.Group("/team")
		{
			team.GET("", teamHandler.ListMembers)
			team.PUT("/:userId/role", managerOnly, teamHandler.UpdateRole)
		}

		news := protected.Group("/news")
		{
			news.GET("", newsHandler.ListNews)
			news.POST("", managerOnly, newsHandler.CreateNews)
			news.DELETE("/:id", managerOnly, newsHandler.DeleteNews)
		}

		events := protected.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.POST("", managerOnly, eventHandler.CreateEvent)
			events.DELETE("/:id", managerOnly, eventHandler.DeleteEvent)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.DELETE("/:id", managerOnly, taskHandler.DeleteTask)
		}

		schedule := protected.Group("/horario")
		{
			schedule.GET("/:year/:month", scheduleHandler.GetSchedule)
			schedule.GET("/:year/:month/file", scheduleHandler.DownloadSchedule)
			schedule.POST("/:year/:month", managerOnly, scheduleHandler.UploadSchedule)
			schedule.DELETE("/:year/:month", managerOnly, scheduleHandler.DeleteSchedule)
		}

		changes := protected.Group("/changes")
		{
			changes.GET("", scheduleHandler.ListChanges)
			changes.POST("", scheduleHandler.CreateChange)
			changes.DELETE("/:id", managerOnly, scheduleHandler.DeleteChange)
		}

		chat := protected.Group("/chat")
		{
			chat.GET("/messages", chatHandler.GetMessages)
			chat.POST("/messages", chatHandler.SendMessage)
		}

		if d.Hub != nil {
			base := d.LiveContext
			if base == nil {
				base = context.Background()
			}
			liveHandler := NewLiveHandler(base, d.Hub, d.AllowedOrigins)

			ws := protected.Group("/live")
			{
				ws.GET("/chat", liveHandler.Stream(live.TopicChat))
				ws.GET("/changes", liveHandler.Stream(live.TopicChanges))
			}
		}
	}

	return router, nil
}
