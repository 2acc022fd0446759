package biblio_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestDecodeToken(t *testing.T) {
	t.Run("extracts subject and role", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": "8", "role": "admin"})

		claims, err := biblio.DecodeToken(token)
		require.NoError(t, err)

		assert.Equal(t, "8", claims.SubjectID())
		assert.Equal(t, "admin", claims.Role())
	})

	t.Run("missing role yields empty role, not an error", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": "8"})

		claims, err := biblio.DecodeToken(token)
		require.NoError(t, err)

		assert.Equal(t, "8", claims.SubjectID())
		assert.Empty(t, claims.Role())
	})

	t.Run("legacy identity claim backs up an absent sub", func(t *testing.T) {
		token := makeToken(t, map[string]any{"identity": "42", "role": "editor"})

		claims, err := biblio.DecodeToken(token)
		require.NoError(t, err)

		assert.Equal(t, "42", claims.SubjectID())
	})

	t.Run("sub wins over legacy identity", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": "8", "identity": "42"})

		claims, err := biblio.DecodeToken(token)
		require.NoError(t, err)

		assert.Equal(t, "8", claims.SubjectID())
	})

	t.Run("wrong segment count is malformed", func(t *testing.T) {
		_, err := biblio.DecodeToken("just-one-segment")
		require.Error(t, err)
		assert.True(t, biblio.IsMalformedTokenError(err))
	})

	t.Run("invalid base64 payload is malformed", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
		_, err := biblio.DecodeToken(header + ".!!!not-base64!!!.sig")
		require.Error(t, err)
		assert.True(t, biblio.IsMalformedTokenError(err))
	})

	t.Run("invalid claims JSON is malformed", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`not json`))
		_, err := biblio.DecodeToken(header + "." + payload + ".sig")
		require.Error(t, err)
		assert.True(t, biblio.IsMalformedTokenError(err))
	})
}

func TestSubjectFromToken(t *testing.T) {
	assert.Equal(t, "8", biblio.SubjectFromToken(makeToken(t, map[string]any{"sub": "8"})))
	assert.Empty(t, biblio.SubjectFromToken("garbage"))
}

func TestRoleFromToken(t *testing.T) {
	assert.Equal(t, "user", biblio.RoleFromToken(makeToken(t, map[string]any{"role": "user"})))
	assert.Empty(t, biblio.RoleFromToken("garbage"))
}

func TestTokenClaims_HasRole(t *testing.T) {
	claims, err := biblio.DecodeToken(makeToken(t, map[string]any{"sub": "1", "role": "editor"}))
	require.NoError(t, err)

	assert.True(t, claims.HasRole(biblio.RoleEditor))
	assert.False(t, claims.HasRole(biblio.RoleAdmin))
}
