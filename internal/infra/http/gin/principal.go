package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const (
	principalContextKey = "staybook.principal"

	headerUserID    = "X-User-ID"
	headerUserRoles = "X-User-Roles"

	roleHost = "host"
)

// principal is the caller as asserted by the upstream gateway.
type principal struct {
	ID    string
	Roles []string
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

// GatewayIdentity reads the caller from gateway headers. Requests without
// X-User-ID stay anonymous; endpoints that need a caller reject them.
func GatewayIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerUserID))
		if id == "" {
			c.Next()
			return
		}
		c.Set(principalContextKey, principal{ID: id, Roles: splitCSV(c.GetHeader(headerUserRoles))})
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
