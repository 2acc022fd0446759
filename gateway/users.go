package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	biblio "github.com/jandresbramirez/go-biblio"
)

// UsersGateway performs user account operations. Listing and deletion are
// admin-only; plain users may only read and update their own account.
type UsersGateway struct {
	client *Client
}

// List returns every account. Admin only.
func (g *UsersGateway) List(ctx context.Context) ([]biblio.User, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin); err != nil {
		return nil, err
	}

	var users []biblio.User
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/users",
		authed: true,
	}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches one account. Plain users may only fetch their own.
func (g *UsersGateway) Get(ctx context.Context, id int) (*biblio.User, error) {
	if g.client.policy.IsPlainUser() && strconv.Itoa(id) != g.client.policy.Subject() {
		return nil, goerrors.New("you can only view your own profile", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(biblio.TextCodePermissionDenied)
	}

	var user biblio.User
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/users/%d", id),
		authed: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail looks an account up by email. Admin or editor.
func (g *UsersGateway) GetByEmail(ctx context.Context, email string) (*biblio.User, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}

	var user biblio.User
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/" + email,
		authed: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentProfile fetches the account behind the current session.
func (g *UsersGateway) CurrentProfile(ctx context.Context) (*biblio.User, error) {
	subject := g.client.policy.Subject()
	if subject == "" {
		return nil, biblio.ErrNotAuthenticated
	}

	id, err := strconv.Atoi(subject)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "session subject is not a user id")
	}

	return g.Get(ctx, id)
}

// Update modifies an account. A plain user updating their own account is
// routed through the profile endpoint; everything else goes through the
// admin surface and is gated server-side.
func (g *UsersGateway) Update(ctx context.Context, id int, payload biblio.ProfilePayload) (*biblio.User, error) {
	if g.client.policy.IsPlainUser() && strconv.Itoa(id) == g.client.policy.Subject() {
		return g.client.auth.UpdateProfile(ctx, payload)
	}

	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile payload")
	}

	var user biblio.User
	err := g.client.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/users/%d", id),
		body:   payload,
		authed: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes an account. Admin only.
func (g *UsersGateway) Delete(ctx context.Context, id int) error {
	if err := g.client.policy.Require(biblio.RoleAdmin); err != nil {
		return err
	}

	return g.client.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/users/%d", id),
		authed: true,
	}, nil)
}

// Search filters the full listing by name or email, case-insensitively.
// The API has no search endpoint, so this inherits List's admin gate.
func (g *UsersGateway) Search(ctx context.Context, query string) ([]biblio.User, error) {
	users, err := g.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]biblio.User, 0, len(users))
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.Name), needle) ||
			strings.Contains(strings.ToLower(user.Email), needle) {
			matches = append(matches, user)
		}
	}
	return matches, nil
}
