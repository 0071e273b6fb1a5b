package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trace-ops/backend/internal/model"
	"github.com/trace-ops/backend/internal/service"
)

const authClaimsKey = "auth_claims"

// Authorizer decides whether a bearer token may perform an operation
// guarded by the given roles.
type Authorizer interface {
	Authorize(ctx context.Context, rawToken string, requiredRoles ...string) (*model.AuthClaims, error)
}

// AuthMiddleware verifies the bearer token and gates the request on
// requiredRoles (any-of). Outcomes map to distinct statuses: missing or
// invalid credential 401, role mismatch 403, identity provider outage 503.
func AuthMiddleware(auth Authorizer, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		var token string
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}

		claims, err := auth.Authorize(c.Request.Context(), token, requiredRoles...)
		if err != nil {
			status := http.StatusUnauthorized
			switch {
			case errors.Is(err, service.ErrForbidden):
				status = http.StatusForbidden
			case errors.Is(err, service.ErrIdentityProvider):
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func GetAuthClaims(c *gin.Context) *model.AuthClaims {
	if value, ok := c.Get(authClaimsKey); ok {
		if claims, ok := value.(*model.AuthClaims); ok {
			return claims
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
