package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authTestRouter(t *testing.T) (*gin.Engine, **gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var captured *gin.Context
	engine.Use(AuthMiddleware(testSecret, zerolog.Nop(), "agenthub"))
	engine.GET("/protected", func(c *gin.Context) {
		captured = c
		c.Status(http.StatusOK)
	})
	return engine, &captured
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	engine, captured := authTestRouter(t)

	token := signToken(t, jwt.MapClaims{
		"sub":       "user_1",
		"tenant_id": "tenant_abc",
		"email":     "dev@example.com",
		"iss":       "agenthub",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	principal := GetPrincipal(*captured)
	if principal == nil {
		t.Fatal("expected principal in context")
	}
	if principal.UserID != "user_1" || principal.TenantPublicID != "tenant_abc" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
	if principal.Email != "dev@example.com" {
		t.Fatalf("email = %q", principal.Email)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{
		"sub":       "user_1",
		"tenant_id": "tenant_abc",
		"iss":       "agenthub",
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})
	noExpiry := signToken(t, jwt.MapClaims{
		"sub":       "user_1",
		"tenant_id": "tenant_abc",
		"iss":       "agenthub",
	})
	wrongIssuer := signToken(t, jwt.MapClaims{
		"sub":       "user_1",
		"tenant_id": "tenant_abc",
		"iss":       "someone-else",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	missingTenant := signToken(t, jwt.MapClaims{
		"sub": "user_1",
		"iss": "agenthub",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired},
		{"missing expiry", "Bearer " + noExpiry},
		{"wrong issuer", "Bearer " + wrongIssuer},
		{"missing tenant claim", "Bearer " + missingTenant},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _ := authTestRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}
