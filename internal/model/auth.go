package model

// AuthClaims holds the identity extracted from a verified bearer token.
// Recomputed per request, never persisted.
type AuthClaims struct {
	Subject string
	Roles   []string
}

// HasAnyRole reports whether the claims carry at least one of the
// required roles. An empty required set always passes (authentication-only).
func (c *AuthClaims) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, role := range c.Roles {
			if role == want {
				return true
			}
		}
	}
	return false
}
