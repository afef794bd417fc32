package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crime-dashboard/internal/auth"
	"crime-dashboard/internal/model"
)

const (
	principalContextKey = "principal"
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
	AdminKeyHeader      = "X-Admin-Key"
)

func Auth(parser *auth.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, parser); !ok {
			return
		}
		c.Next()
	}
}

// Admin admits callers presenting the privileged key in X-Admin-Key, or a
// bearer token with the admin role.
func Admin(parser *auth.Parser, adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(AdminKeyHeader); key != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
				return
			}
			c.Set(principalContextKey, model.Principal{UserID: "admin-key", Role: model.UserRoleAdmin})
			c.Next()
			return
		}

		principal, ok := authenticate(c, parser)
		if !ok {
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, parser *auth.Parser) (model.Principal, bool) {
	rawHeader := c.GetHeader(authorizationHeader)
	if rawHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing"})
		return model.Principal{}, false
	}

	parts := strings.SplitN(rawHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
		return model.Principal{}, false
	}

	claims, err := parser.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return model.Principal{}, false
	}

	role := model.UserRole(strings.ToLower(claims.Role))
	if role != model.UserRoleAdmin {
		role = model.UserRoleUser
	}
	principal := model.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}

	c.Set(principalContextKey, principal)
	return principal, true
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return model.Principal{}, false
	}

	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}, false
	}

	return principal, true
}
