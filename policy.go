package biblio

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// AccessPolicy answers role-gating questions over the current session.
// These checks gate client-side only; the authoritative check is always
// re-enforced server-side. A denial here short-circuits before any network
// call and must surface to the caller.
type AccessPolicy struct {
	sessions *SessionStore
}

func NewAccessPolicy(sessions *SessionStore) *AccessPolicy {
	return &AccessPolicy{sessions: sessions}
}

// IsAdmin checks if the current role is admin
func (p *AccessPolicy) IsAdmin() bool {
	return p.sessions.Role() == RoleAdmin
}

// IsEditor checks if the current role is editor
func (p *AccessPolicy) IsEditor() bool {
	return p.sessions.Role() == RoleEditor
}

// IsPlainUser checks if the current role is a regular member
func (p *AccessPolicy) IsPlainUser() bool {
	return p.sessions.Role() == RoleUser
}

// HasAnyRole checks if the current role is one of the allowed roles
func (p *AccessPolicy) HasAnyRole(allowed ...UserRole) bool {
	current := p.sessions.Role()
	for _, role := range allowed {
		if current == role {
			return true
		}
	}
	return false
}

// Subject returns the current session's subject id.
func (p *AccessPolicy) Subject() string {
	return p.sessions.Subject()
}

// Require returns nil when the current role is one of the allowed roles,
// and a permission-denied error otherwise. An absent role (no session, or a
// credential that failed to decode) always denies.
func (p *AccessPolicy) Require(allowed ...UserRole) error {
	if p.HasAnyRole(allowed...) {
		return nil
	}

	current := string(p.sessions.Role())
	if current == "" {
		return goerrors.New("not authenticated", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(TextCodePermissionDenied).
			WithMetadata(map[string]any{
				"required_roles": roleList(allowed),
			})
	}

	return goerrors.New("permission denied", goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodePermissionDenied).
		WithMetadata(map[string]any{
			"required_roles": roleList(allowed),
			"current_role":   current,
		})
}

func roleList(roles []UserRole) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}
