package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderdesk/internal/pkg/auth"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
)

const (
	// SessionContextKey is a gin context key for the authenticated model.Session.
	SessionContextKey = "session"
	authCookieName    = "orderdesk_token"
)

// TokenParser resolves bearer tokens into sessions.
type TokenParser interface {
	ParseToken(token string) (model.Session, error)
}

// AuthRequired ensures the caller is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		session, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abort(c, http.StatusUnauthorized, "invalid token")
				return
			}
			abort(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

// RequireRole rejects authenticated callers that do not hold role.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(SessionContextKey)
		session, _ := val.(model.Session)
		if !ok || session.Role != role {
			abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.Envelope{Status: status, Message: message})
}
