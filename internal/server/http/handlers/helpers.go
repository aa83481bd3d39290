package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/middleware"
)

// CurrentSession extracts the authenticated session from context.
func CurrentSession(c *gin.Context) model.Session {
	val, ok := c.Get(middleware.SessionContextKey)
	if !ok {
		return model.Session{}
	}
	session, _ := val.(model.Session)
	return session
}
