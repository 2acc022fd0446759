package gateway

import (
	"context"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	biblio "github.com/jandresbramirez/go-biblio"
)

// AuthorsGateway performs author catalog operations. The listing is public;
// writes need editor rights, deletion needs admin.
type AuthorsGateway struct {
	client *Client
}

// List returns every author. No authentication required.
func (g *AuthorsGateway) List(ctx context.Context) ([]biblio.Author, error) {
	var authors []biblio.Author
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/authors",
	}, &authors)
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// Get fetches one author. Requires authentication.
func (g *AuthorsGateway) Get(ctx context.Context, id int) (*biblio.Author, error) {
	var author biblio.Author
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/authors/%d", id),
		authed: true,
	}, &author)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Create adds an author. Admin or editor.
func (g *AuthorsGateway) Create(ctx context.Context, payload biblio.AuthorPayload) (*biblio.Author, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid author payload")
	}

	var author biblio.Author
	err := g.client.do(ctx, request{
		method:     http.MethodPost,
		path:       "/authors",
		body:       payload,
		authed:     true,
		wantStatus: http.StatusCreated,
	}, &author)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Update modifies an author. Admin or editor.
func (g *AuthorsGateway) Update(ctx context.Context, id int, payload biblio.AuthorPayload) (*biblio.Author, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid author payload")
	}

	var author biblio.Author
	err := g.client.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/authors/%d", id),
		body:   payload,
		authed: true,
	}, &author)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Delete removes an author. Admin only.
func (g *AuthorsGateway) Delete(ctx context.Context, id int) error {
	if err := g.client.policy.Require(biblio.RoleAdmin); err != nil {
		return err
	}

	return g.client.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/authors/%d", id),
		authed: true,
	}, nil)
}
