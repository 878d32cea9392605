package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/live"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
)

// LiveHandler upgrades requests to websockets streaming a hub topic.
type LiveHandler struct {
	hub      *live.Hub
	base     context.Context
	upgrader websocket.Upgrader
}

// NewLiveHandler serves hub. Streams end when base is done.
func NewLiveHandler(base context.Context, hub *live.Hub, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		hub:  hub,
		base: base,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// native clients send no origin
		return origin == "" || set["*"] || set[origin]
	}
}

// Stream returns a handler for topic.
func (h *LiveHandler) Stream(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.hub.Collection(topic) == nil {
			apperrors.HandleError(c, apperrors.NotFound("live", "unknown topic"))
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader has already written the error response
			logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		uid := middleware.GetUserID(c)
		if err := h.hub.Serve(h.base, conn, uid, topic); err != nil {
			logger.Warn("live stream ended", zap.String("topic", topic), zap.String("uid", uid), zap.Error(err))
		}
	}
}
