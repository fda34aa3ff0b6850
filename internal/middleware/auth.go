package middleware

import (
	"net/http"
	"strings"

	"ajil.mn/jobmarket/internal/service"
	"github.com/gin-gonic/gin"
)

// Auth validates bearer tokens and loads the caller's identity into the
// request context under "user_id" and "user_type".
type Auth struct {
	tokens service.TokenService
	appEnv string
}

func NewAuth(tokens service.TokenService, appEnv string) *Auth {
	return &Auth{tokens: tokens, appEnv: appEnv}
}

// RequireAuth rejects requests without a valid access token. Tokens are read
// from the Authorization header, with a ?token= query fallback for the
// WebSocket endpoint where browsers cannot set headers.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}

		if claims, ok := a.tokens.Verify(token); ok {
			if claims.Kind != service.TokenKindAccess {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "refresh token cannot be used for requests"})
				return
			}
			setIdentity(c, claims)
			c.Next()
			return
		}

		// Demo tokens let the showcase frontend run without a real login.
		// Never honored in production.
		if a.appEnv != "production" {
			if claims, ok := service.ParseDemoToken(token); ok {
				setIdentity(c, claims)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
	}
}

// RequireRoles allows only callers whose user type is in the given set.
// Must run after RequireAuth.
func (a *Auth) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}
		userType := c.GetString("user_type")
		for _, role := range roles {
			if userType == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(header)
	}
	return c.Query("token")
}

func setIdentity(c *gin.Context, claims *service.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_type", claims.UserType)
	c.Set("username", claims.Username)
	c.Set("claims", claims)
}
