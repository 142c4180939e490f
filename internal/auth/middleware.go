package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/models"
	"github.com/refermarket/backend/internal/util"
	"go.uber.org/zap"
)

const (
	// ContextUserKey is where RequireAuth stores the resolved *models.User
	ContextUserKey = "user"
	// ContextUserIDKey is where RequireAuth stores the local user ID
	ContextUserIDKey = "user_id"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// RequireAuth validates the bearer token and loads (or creates) the
// local user, aborting with 401 when the token is missing or invalid.
func RequireAuth(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.RespondUnauthorized(c, "no token provided")
			c.Abort()
			return
		}

		claims, err := s.ValidateToken(token)
		if err != nil {
			logger.Log.Debug("Token validation failed", zap.Error(err))
			util.RespondUnauthorized(c, "invalid token")
			c.Abort()
			return
		}

		user, err := s.EnsureUser(claims)
		if err != nil {
			logger.Log.Error("Failed to resolve authenticated user",
				zap.String("uid", claims.UID),
				zap.Error(err),
			)
			util.RespondUnauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present but
// never rejects the request. Anonymous click tracking depends on this.
func OptionalAuth(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := s.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		user, err := s.EnsureUser(claims)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the gin context, or
// nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}
