// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/i18n"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

// SessionKey is the gin context key holding the resolved *session.Session.
const SessionKey = "session"

// SessionResolver turns validated token claims into the live session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, claims *utils.JWTClaims) (*session.Session, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setSession(c *gin.Context, current *session.Session) {
	c.Set(SessionKey, current)
	c.Set("user_id", current.UserID.String())
	c.Set("email", current.Email)
	c.Set("user_type", string(current.UserType))
}

// AuthRequired rejects requests without a live session.
func AuthRequired(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		current, err := resolver.ResolveSession(c.Request.Context(), claims)
		if err != nil {
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("Failed to resolve session")
			utils.InternalErrorResponse(c, "")
			c.Abort()
			return
		}
		if current == nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthSessionExpired))
			c.Abort()
			return
		}

		setSession(c, current)
		c.Next()
	}
}

// OptionalAuth attaches the session when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		current, err := resolver.ResolveSession(c.Request.Context(), claims)
		if err == nil && current != nil {
			setSession(c, current)
		}
		c.Next()
	}
}

// AdminRequired admits sessions whose email is on the admin allow-list.
// Must run after AuthRequired.
func AdminRequired(admins config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentSession(c)
		email, _ := utils.GetEmailFromContext(c)
		if current == nil || !(current.IsAdmin || admins.IsAdmin(email)) {
			utils.ForbiddenResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAdminAccessDenied))
			c.Abort()
			return
		}
		c.Next()
	}
}

// BusinessOwnerRequired admits business accounts only.
func BusinessOwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, ok := utils.GetUserTypeFromContext(c)
		if !ok || models.UserType(userType) != models.UserTypeBusiness {
			utils.ForbiddenResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthBusinessOnly))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session set by AuthRequired or OptionalAuth.
func CurrentSession(c *gin.Context) *session.Session {
	if v, exists := c.Get(SessionKey); exists {
		if current, ok := v.(*session.Session); ok {
			return current
		}
	}
	return nil
}
