package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"agenthub/services/chat-api/internal/domain"
	"agenthub/services/chat-api/internal/infrastructure/metrics"
)

const principalContextKey = "principal"

// AuthMiddleware validates the bearer token and stores the resolved principal
// in the gin context. Tokens are HMAC-signed JWTs minted by the identity
// service; this service only verifies them.
func AuthMiddleware(secret string, logger zerolog.Logger, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			logger.Warn().Err(err).Str("request_id", RequestIDFromContext(c)).Msg("token validation failed")
			abortUnauthorized(c, "invalid token")
			return
		}

		userID, _ := claims["sub"].(string)
		tenantID, _ := claims["tenant_id"].(string)
		email, _ := claims["email"].(string)
		if userID == "" || tenantID == "" {
			abortUnauthorized(c, "token missing identity claims")
			return
		}

		metrics.AuthRequestsTotal.WithLabelValues("ok").Inc()
		c.Set(principalContextKey, &domain.Principal{
			UserID:         userID,
			TenantPublicID: tenantID,
			Email:          email,
			AuthMethod:     domain.AuthMethodJWT,
		})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	metrics.AuthRequestsTotal.WithLabelValues("rejected").Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// GetPrincipal returns the authenticated principal, or nil outside the auth
// middleware.
func GetPrincipal(c *gin.Context) *domain.Principal {
	if val, ok := c.Get(principalContextKey); ok {
		if principal, ok := val.(*domain.Principal); ok {
			return principal
		}
	}
	return nil
}
