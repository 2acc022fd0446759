package biblio_test

import (
	"testing"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policyWithRole(t *testing.T, role string) *biblio.AccessPolicy {
	t.Helper()

	sessions := biblio.NewSessionStore(biblio.NewMemoryStorage())
	if role != "" {
		require.NoError(t, sessions.Save("tok", "8", role, "", ""))
	}
	return biblio.NewAccessPolicy(sessions)
}

func TestAccessPolicy_RoleChecks(t *testing.T) {
	tests := []struct {
		role    string
		admin   bool
		editor  bool
		plain   bool
	}{
		{role: "admin", admin: true},
		{role: "editor", editor: true},
		{role: "user", plain: true},
		{role: ""},
	}

	for _, tt := range tests {
		name := tt.role
		if name == "" {
			name = "no session"
		}
		t.Run(name, func(t *testing.T) {
			policy := policyWithRole(t, tt.role)
			assert.Equal(t, tt.admin, policy.IsAdmin())
			assert.Equal(t, tt.editor, policy.IsEditor())
			assert.Equal(t, tt.plain, policy.IsPlainUser())
		})
	}
}

func TestAccessPolicy_HasAnyRole(t *testing.T) {
	t.Run("editor is allowed where admin or editor is required", func(t *testing.T) {
		policy := policyWithRole(t, "editor")
		assert.True(t, policy.HasAnyRole(biblio.RoleAdmin, biblio.RoleEditor))
	})

	t.Run("plain user is not", func(t *testing.T) {
		policy := policyWithRole(t, "user")
		assert.False(t, policy.HasAnyRole(biblio.RoleAdmin, biblio.RoleEditor))
	})

	t.Run("absent role never matches", func(t *testing.T) {
		policy := policyWithRole(t, "")
		assert.False(t, policy.HasAnyRole(biblio.RoleAdmin, biblio.RoleEditor, biblio.RoleUser))
	})
}

func TestAccessPolicy_Require(t *testing.T) {
	t.Run("allowed role passes", func(t *testing.T) {
		policy := policyWithRole(t, "admin")
		assert.NoError(t, policy.Require(biblio.RoleAdmin))
	})

	t.Run("denied role yields a policy denial", func(t *testing.T) {
		policy := policyWithRole(t, "user")
		err := policy.Require(biblio.RoleAdmin, biblio.RoleEditor)
		require.Error(t, err)
		assert.True(t, biblio.IsPermissionDenied(err))
	})

	t.Run("missing session yields a policy denial", func(t *testing.T) {
		policy := policyWithRole(t, "")
		err := policy.Require(biblio.RoleUser)
		require.Error(t, err)
		assert.True(t, biblio.IsPermissionDenied(err))
	})
}

func TestParseRole(t *testing.T) {
	for _, role := range biblio.AllRoles() {
		parsed, ok := biblio.ParseRole(string(role))
		assert.True(t, ok)
		assert.Equal(t, role, parsed)
	}

	_, ok := biblio.ParseRole("superuser")
	assert.False(t, ok)
}
