package biblio

import (
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DecodeToken decodes a bearer credential into its claims without verifying
// the signature. This is a client-side convenience decode, not a trust
// boundary: the server re-validates the token on every request.
//
// A credential with the wrong segment count, invalid base64, or invalid
// claims JSON yields ErrTokenMalformed with the parse failure attached.
func DecodeToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "malformed bearer token").
			WithTextCode(TextCodeTokenMalformed)
	}

	return claims, nil
}

// SubjectFromToken extracts the subject id from a credential, degrading to
// an empty string on any decode failure.
func SubjectFromToken(tokenString string) string {
	claims, err := DecodeToken(tokenString)
	if err != nil {
		return ""
	}
	return claims.SubjectID()
}

// RoleFromToken extracts the role claim from a credential, degrading to an
// empty string on any decode failure.
func RoleFromToken(tokenString string) string {
	claims, err := DecodeToken(tokenString)
	if err != nil {
		return ""
	}
	return claims.Role()
}
