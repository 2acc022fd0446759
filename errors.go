package biblio

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenMalformed marks credentials that could not be decoded
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeNotAuthenticated marks calls made without a stored credential
	TextCodeNotAuthenticated = "NOT_AUTHENTICATED"
	// TextCodePermissionDenied marks client-side role check failures
	TextCodePermissionDenied = "PERMISSION_DENIED"
	// TextCodeConnection marks transport failures where no response was obtained
	TextCodeConnection = "CONNECTION_ERROR"
	// TextCodeServerRejected marks non-2xx responses carrying a server message
	TextCodeServerRejected = "SERVER_REJECTED"
)

// ErrTokenMalformed is returned when a bearer credential cannot be decoded:
// wrong segment count, invalid base64, or invalid claims JSON.
var ErrTokenMalformed = goerrors.New("malformed bearer token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrNotAuthenticated is returned when an operation needs a session and none
// is stored.
var ErrNotAuthenticated = goerrors.New("not authenticated", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeNotAuthenticated)

// ErrPermissionDenied is the policy-denial result. It is produced before any
// network call and must surface to the caller, never be swallowed.
var ErrPermissionDenied = goerrors.New("permission denied", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodePermissionDenied)

// IsPermissionDenied reports whether err is a client-side policy denial.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryAuthz
}

// IsConnectionError reports whether err is a transport failure, meaning no
// response was obtained from the server.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeConnection
}

// IsMalformedTokenError reports whether err came from a failed credential
// decode. Callers treat it as "unauthenticated", not as a fatal condition.
func IsMalformedTokenError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeTokenMalformed
}
