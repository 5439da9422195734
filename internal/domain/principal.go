package domain

// AuthMethod identifies how a principal was authenticated.
type AuthMethod string

const (
	AuthMethodJWT AuthMethod = "jwt"
)

// Principal is the authenticated caller resolved by the auth middleware.
// Identity issuance lives in an external identity provider; the service only
// consumes the resulting claims.
type Principal struct {
	UserID         string
	TenantPublicID string
	Email          string
	AuthMethod     AuthMethod
}
