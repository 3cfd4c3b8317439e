package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	domainuser "autofleet/internal/domain/user"
)

const principalContextKey = "autofleet.principal"

type principal struct {
	ID        string
	Email     string
	Name      string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
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

func (p principal) isAdmin() bool {
	return p.HasRole(string(domainuser.RoleAdmin))
}

// AuthMiddleware resolves the bearer token to an account and stores the
// principal on the request context. Token issuance lives at the gateway;
// here the token carries the account id directly.
type AuthMiddleware struct {
	Users  domainuser.Repository
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Users == nil {
		c.Next()
		return
	}
	account, err := m.Users.ByID(c.Request.Context(), domainuser.ID(token))
	if err != nil {
		if !errors.Is(err, domainuser.ErrNotFound) && m.Logger != nil {
			m.Logger.Debug("principal lookup failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{
		ID:        string(account.ID),
		Email:     account.Email,
		Name:      account.Name,
		Roles:     mapRoles(account.Roles),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
	c.Next()
}

func mapRoles(roles []domainuser.Role) []string {
	result := make([]string, 0, len(roles))
	for _, r := range roles {
		result = append(result, string(r))
	}
	return result
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
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
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
