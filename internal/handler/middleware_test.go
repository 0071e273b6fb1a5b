package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/trace-ops/backend/internal/model"
	"github.com/trace-ops/backend/internal/service"
)

type fakeAuthorizer struct {
	claims   *model.AuthClaims
	err      error
	gotToken string
	gotRoles []string
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, rawToken string, requiredRoles ...string) (*model.AuthClaims, error) {
	f.gotToken = rawToken
	f.gotRoles = requiredRoles
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func newAuthTestRouter(auth Authorizer, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(auth, roles...), func(c *gin.Context) {
		claims := GetAuthClaims(c)
		if claims == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return router
}

func TestAuthMiddlewarePassesTokenAndRoles(t *testing.T) {
	auth := &fakeAuthorizer{claims: &model.AuthClaims{Subject: "user-1", Roles: []string{"decider"}}}
	router := newAuthTestRouter(auth, "operator", "decider")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if auth.gotToken != "token-123" {
		t.Fatalf("expected extracted bearer token, got %q", auth.gotToken)
	}
	if len(auth.gotRoles) != 2 || auth.gotRoles[0] != "operator" {
		t.Fatalf("expected required roles forwarded, got %v", auth.gotRoles)
	}
}

func TestAuthMiddlewareNoBearerHeader(t *testing.T) {
	auth := &fakeAuthorizer{err: service.ErrMissingCredential}
	router := newAuthTestRouter(auth)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if auth.gotToken != "" {
		t.Fatalf("expected empty token without Bearer header, got %q", auth.gotToken)
	}
}

func TestAuthMiddlewareStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid-token", err: service.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "forbidden", err: service.ErrForbidden, want: http.StatusForbidden},
		{name: "idp-down", err: service.ErrIdentityProvider, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&fakeAuthorizer{err: tt.err})
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCORSMiddlewareAllowsKnownOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:5173"}, true))
	router.GET("/alerts", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/alerts", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected unknown origin to be ignored, got %q", got)
	}
}
