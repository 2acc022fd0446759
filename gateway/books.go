package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	biblio "github.com/jandresbramirez/go-biblio"
)

// UnknownAuthor is the placeholder shown for a book whose author reference
// cannot be resolved. Broken references degrade to display text; they are
// never an error.
const UnknownAuthor = "unknown author"

// BooksGateway performs book catalog operations and joins author names into
// the results. The listing is public; writes need editor rights, deletion
// needs admin.
type BooksGateway struct {
	client *Client
}

// List returns every book with its author's name joined in. The author
// catalog is fetched once and joined through a lookup map; when that fetch
// fails, the books are returned with the placeholder name instead of
// failing the listing.
func (g *BooksGateway) List(ctx context.Context) ([]biblio.EnrichedBook, error) {
	var books []biblio.Book
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/books",
	}, &books)
	if err != nil {
		return nil, err
	}

	return g.enrichAll(ctx, books), nil
}

// Get fetches one book with its author's name joined in. Requires
// authentication.
func (g *BooksGateway) Get(ctx context.Context, id int) (*biblio.EnrichedBook, error) {
	var book biblio.Book
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/books/%d", id),
		authed: true,
	}, &book)
	if err != nil {
		return nil, err
	}

	enriched := g.enrichOne(ctx, book)
	return &enriched, nil
}

// ByAuthor returns the author's books. The dedicated endpoint is tried
// first; when the server rejects it, the full listing is filtered locally.
func (g *BooksGateway) ByAuthor(ctx context.Context, authorID int) ([]biblio.EnrichedBook, error) {
	var books []biblio.Book
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/books/author/%d", authorID),
		authed: true,
	}, &books)
	if err == nil {
		return g.enrichAll(ctx, books), nil
	}
	if biblio.IsConnectionError(err) {
		return nil, err
	}

	all, listErr := g.List(ctx)
	if listErr != nil {
		return nil, listErr
	}

	matches := make([]biblio.EnrichedBook, 0, len(all))
	for _, book := range all {
		if book.AuthorID == authorID {
			matches = append(matches, book)
		}
	}
	return matches, nil
}

// Create adds a book. Admin or editor.
func (g *BooksGateway) Create(ctx context.Context, payload biblio.BookPayload) (*biblio.EnrichedBook, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid book payload")
	}

	var book biblio.Book
	err := g.client.do(ctx, request{
		method:     http.MethodPost,
		path:       "/books",
		body:       payload,
		authed:     true,
		wantStatus: http.StatusCreated,
	}, &book)
	if err != nil {
		return nil, err
	}

	enriched := g.enrichOne(ctx, book)
	return &enriched, nil
}

// Update modifies a book. Admin or editor.
func (g *BooksGateway) Update(ctx context.Context, id int, payload biblio.BookPayload) (*biblio.EnrichedBook, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid book payload")
	}

	var book biblio.Book
	err := g.client.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/books/%d", id),
		body:   payload,
		authed: true,
	}, &book)
	if err != nil {
		return nil, err
	}

	enriched := g.enrichOne(ctx, book)
	return &enriched, nil
}

// Delete removes a book. Admin only.
func (g *BooksGateway) Delete(ctx context.Context, id int) error {
	if err := g.client.policy.Require(biblio.RoleAdmin); err != nil {
		return err
	}

	return g.client.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/books/%d", id),
		authed: true,
	}, nil)
}

// Search filters the full listing by title or author name,
// case-insensitively.
func (g *BooksGateway) Search(ctx context.Context, query string) ([]biblio.EnrichedBook, error) {
	books, err := g.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]biblio.EnrichedBook, 0, len(books))
	for _, book := range books {
		if strings.Contains(strings.ToLower(book.Title), needle) ||
			strings.Contains(strings.ToLower(book.AuthorName), needle) {
			matches = append(matches, book)
		}
	}
	return matches, nil
}

// authorNames fetches the author catalog once and returns an id-to-name
// lookup map. The map is empty when the fetch fails.
func (g *AuthorsGateway) authorNames(ctx context.Context) map[int]string {
	authors, err := g.List(ctx)
	if err != nil {
		g.client.logger.Debug("author enrichment unavailable: %v", err)
		return map[int]string{}
	}

	names := make(map[int]string, len(authors))
	for _, author := range authors {
		names[author.ID] = author.Name
	}
	return names
}

func (g *BooksGateway) enrichAll(ctx context.Context, books []biblio.Book) []biblio.EnrichedBook {
	names := g.client.authors.authorNames(ctx)

	enriched := make([]biblio.EnrichedBook, 0, len(books))
	for _, book := range books {
		enriched = append(enriched, joinAuthor(book, names))
	}
	return enriched
}

func (g *BooksGateway) enrichOne(ctx context.Context, book biblio.Book) biblio.EnrichedBook {
	if author, err := g.client.authors.Get(ctx, book.AuthorID); err == nil {
		return biblio.EnrichedBook{Book: book, AuthorName: author.Name}
	}
	return biblio.EnrichedBook{Book: book, AuthorName: UnknownAuthor}
}

func joinAuthor(book biblio.Book, names map[int]string) biblio.EnrichedBook {
	name, ok := names[book.AuthorID]
	if !ok || name == "" {
		name = UnknownAuthor
	}
	return biblio.EnrichedBook{Book: book, AuthorName: name}
}
