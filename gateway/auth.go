package gateway

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"

	biblio "github.com/jandresbramirez/go-biblio"
)

// AuthGateway handles login, registration, logout, and the caller's own
// profile.
type AuthGateway struct {
	client *Client
}

// LoginPayload is the login request body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *biblio.User `json:"user,omitempty"`
}

// LoginResult reports what a successful login established. Subject and Role
// come from the decoded credential, which is the sole source of truth; the
// optional profile payload only contributes display fields.
type LoginResult struct {
	Token   string
	Subject string
	Role    biblio.UserRole
	User    *biblio.User
}

// Login authenticates against the remote service and persists the session.
// The returned credential is decoded client-side for subject and role; a
// credential that cannot be decoded still logs in, as an unauthenticated-
// equivalent session the server may nevertheless accept.
func (g *AuthGateway) Login(ctx context.Context, payload LoginPayload) (*LoginResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	var resp loginResponse
	err := g.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		body:   payload,
	}, &resp)
	if err != nil {
		return nil, err
	}

	subject := biblio.SubjectFromToken(resp.AccessToken)
	role := biblio.RoleFromToken(resp.AccessToken)

	displayName, email := "", ""
	if resp.User != nil {
		displayName = resp.User.Name
		email = resp.User.Email
	}

	if err := g.client.sessions.Save(resp.AccessToken, subject, role, displayName, email); err != nil {
		return nil, err
	}

	g.client.logger.Info("logged in subject=%s role=%s", subject, role)

	return &LoginResult{
		Token:   resp.AccessToken,
		Subject: subject,
		Role:    biblio.UserRole(role),
		User:    resp.User,
	}, nil
}

// Register creates a new account through the public registration endpoint.
func (g *AuthGateway) Register(ctx context.Context, payload biblio.RegisterPayload) (*biblio.User, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	var user biblio.User
	err := g.client.do(ctx, request{
		method:     http.MethodPost,
		path:       "/registry",
		body:       payload,
		wantStatus: http.StatusCreated,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the server to revoke the session and clears the persisted
// session regardless of the outcome: a dead network must not leave the
// client logged in.
func (g *AuthGateway) Logout(ctx context.Context) error {
	callErr := g.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/logout",
		authed: true,
	}, nil)

	if err := g.client.sessions.Clear(); err != nil {
		return err
	}

	return callErr
}

// UpdateProfile updates the caller's own account via the profile endpoint.
func (g *AuthGateway) UpdateProfile(ctx context.Context, payload biblio.ProfilePayload) (*biblio.User, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile payload")
	}

	var user biblio.User
	err := g.client.do(ctx, request{
		method: http.MethodPut,
		path:   "/profile",
		body:   payload,
		authed: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
