package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/auth"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/dto"
)

const (
	jwtUserIDKey = "jwt_user_id"
	jwtRoleKey   = "jwt_role"
)

// JWTAuthConfig controls which paths bypass authentication.
type JWTAuthConfig struct {
	SkipPaths []string
}

// JWTAuthMiddleware validates Bearer tokens on protected routes.
func JWTAuthMiddleware(jwtService *auth.JWTService, cfg JWTAuthConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := extractBearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed Authorization header")
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "access token expired")
				return
			}
			abortUnauthorized(c, "invalid access token")
			return
		}

		c.Set(jwtUserIDKey, claims.UserID)
		c.Set(jwtRoleKey, claims.Role)
		c.Next()
	}
}

// GetJWTUserID returns the authenticated user id, empty when unauthenticated.
func GetJWTUserID(c *gin.Context) string {
	if v, ok := c.Get(jwtUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetJWTRole returns the authenticated user's role.
func GetJWTRole(c *gin.Context) string {
	if v, ok := c.Get(jwtRoleKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(
		dto.GetHTTPStatus(dto.ErrCodeUnauthorized),
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, GetRequestID(c)),
	)
}
