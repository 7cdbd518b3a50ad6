// Package identity resolves the verified caller from token claims.
package identity

import (
	"github.com/golang-jwt/jwt/v5"

	"procurement/internal/model"
)

// Identity is the resolved caller: a verified email plus the role set
// the identity provider attached to the token. A zero Identity is an
// anonymous caller.
type Identity struct {
	Email string
	Roles []string
}

// emailClaims is the priority order for the email claim. The key
// varies by auth scheme: B2C issues "emails", B2B tenants issue one of
// the others.
var emailClaims = []string{"emails", "email", "upn", "preferred_username"}

// FromClaims extracts the caller identity from verified claims. Claims
// are trusted here; validation happened upstream.
func FromClaims(claims jwt.MapClaims) Identity {
	var id Identity

	for _, key := range emailClaims {
		if v, ok := claims[key]; ok {
			switch email := v.(type) {
			case string:
				if email != "" {
					id.Email = email
				}
			case []interface{}:
				// B2C may issue "emails" as a collection; the first
				// entry is the primary address.
				if len(email) > 0 {
					if s, ok := email[0].(string); ok && s != "" {
						id.Email = s
					}
				}
			}
		}
		if id.Email != "" {
			break
		}
	}

	switch roles := claims["roles"].(type) {
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok {
				id.Roles = append(id.Roles, s)
			}
		}
	case string:
		id.Roles = append(id.Roles, roles)
	}
	if len(id.Roles) == 0 {
		if role, ok := claims["role"].(string); ok && role != "" {
			id.Roles = append(id.Roles, role)
		}
	}

	return id
}

// IsAnonymous reports whether no verified email was attached.
func (id Identity) IsAnonymous() bool {
	return id.Email == ""
}

// HasRole reports whether the caller holds the given role.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsUser, IsCoordinator and IsAdmin are shorthands for the closed role set.
func (id Identity) IsUser() bool        { return id.HasRole(model.RoleUser) }
func (id Identity) IsCoordinator() bool { return id.HasRole(model.RoleCoordinator) }
func (id Identity) IsAdmin() bool       { return id.HasRole(model.RoleAdmin) }
