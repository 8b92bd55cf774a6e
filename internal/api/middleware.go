package api

import (
	"strings"

	"pharma-market/internal/models"
	"pharma-market/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// bearerToken reads the Authorization header, falling back to the token query
// parameter for websocket clients
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

// authRequired resolves the session and admits the given roles. Admins are
// admitted everywhere.
func (h *Handler) authRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		user, err := h.svc.Sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		if !roleAllowed(user.Role, roles) {
			respondError(c, service.ErrForbidden)
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func roleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// currentUser returns the user set by authRequired
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}
