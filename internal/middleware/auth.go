package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

const (
	userIDKey  = "userID"
	sessionKey = "session"
	roleKey    = "role"
)

// Authenticator resolves bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Session, error)
}

// RoleLookup returns the current role of a user.
type RoleLookup interface {
	Role(ctx context.Context, uid string) (models.Role, error)
}

// AuthMiddleware validates the authorization token. Websocket clients,
// which cannot set headers, may pass it as the "token" query parameter.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		// Store user ID in context for use in handlers
		c.Set(userIDKey, session.UID)
		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if q := c.Query("token"); q != "" {
			return q, nil
		}
		return "", apperrors.Unauthorized("authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.Unauthorized("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperrors.Unauthorized("token is required")
	}
	return token, nil
}

// RequireRoles lets the request through only when the caller's current
// role is one of roles. The role is read fresh so that edits apply at once.
func RequireRoles(lookup RoleLookup, roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		uid := GetUserID(c)
		if uid == "" {
			apperrors.HandleError(c, apperrors.Unauthorized("unauthorized"))
			return
		}

		role, err := lookup.Role(c.Request.Context(), uid)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		if !allowed[role] {
			apperrors.HandleError(c, apperrors.Forbidden("insufficient role"))
			return
		}

		c.Set(roleKey, role)
		c.Next()
	}
}

// RequireManager gates the routes reserved to admins and moderators.
func RequireManager(lookup RoleLookup) gin.HandlerFunc {
	return RequireRoles(lookup, models.RoleAdmin, models.RoleModerator)
}

// GetUserID returns the authenticated user's id, or "".
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetSession returns the authenticated session, or nil.
func GetSession(c *gin.Context) *services.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*services.Session)
	return s
}
