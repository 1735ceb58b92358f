package auth

import (
	"strings"
)

// RoleAdmin is the claim value granting administrative access.
const RoleAdmin = "admin"

// Identity is the authenticated caller, built once per request from the bearer token
// and passed explicitly to every operation that needs it.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
	admin  bool
}

// IsAdmin reports whether the caller may act on other users' data.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.admin
}

// AdminPolicy decides administrative capability from an identity's claims.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy builds a policy granting admin to the role claim or to an exact email allowlist.
func NewAdminPolicy(emails []string) AdminPolicy {
	allow := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized != "" {
			allow[normalized] = struct{}{}
		}
	}
	return AdminPolicy{emails: allow}
}

// Resolve returns a copy of identity with its admin capability decided.
func (p AdminPolicy) Resolve(identity Identity) Identity {
	identity.admin = strings.EqualFold(strings.TrimSpace(identity.Role), RoleAdmin)
	if !identity.admin {
		_, identity.admin = p.emails[strings.ToLower(strings.TrimSpace(identity.Email))]
	}
	return identity
}
