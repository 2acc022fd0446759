package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	goerrors "github.com/goliatone/go-errors"

	biblio "github.com/jandresbramirez/go-biblio"
)

// LoansGateway performs loan operations and joins user and book display
// fields plus the derived lifecycle state into every result. Listings need
// editor rights; plain users can only open loans for themselves.
type LoansGateway struct {
	client *Client
}

// List returns every loan, enriched. Admin or editor.
//
// Enrichment is batched: one users fetch and one books fetch build lookup
// maps that every loan joins against, instead of a round trip per loan.
func (g *LoansGateway) List(ctx context.Context) ([]biblio.EnrichedLoan, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}

	var loans []biblio.Loan
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/loans",
		authed: true,
	}, &loans)
	if err != nil {
		return nil, err
	}

	return g.enrichAll(ctx, loans), nil
}

// Get fetches one loan, enriched. Admin or editor.
func (g *LoansGateway) Get(ctx context.Context, id int) (*biblio.EnrichedLoan, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}

	var loan biblio.Loan
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/loans/%d", id),
		authed: true,
	}, &loan)
	if err != nil {
		return nil, err
	}

	enriched := g.enrichAll(ctx, []biblio.Loan{loan})
	return &enriched[0], nil
}

// Create opens a loan. Admins may open loans for anyone; plain users only
// for their own account.
func (g *LoansGateway) Create(ctx context.Context, payload biblio.LoanPayload) (*biblio.EnrichedLoan, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleUser); err != nil {
		return nil, err
	}

	if g.client.policy.IsPlainUser() && strconv.Itoa(payload.UserID) != g.client.policy.Subject() {
		return nil, goerrors.New("you can only create loans for your own account", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(biblio.TextCodePermissionDenied)
	}

	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid loan payload")
	}

	var loan biblio.Loan
	err := g.client.do(ctx, request{
		method:     http.MethodPost,
		path:       "/loans",
		body:       payload,
		authed:     true,
		wantStatus: http.StatusCreated,
	}, &loan)
	if err != nil {
		return nil, err
	}

	enriched := g.enrichAll(ctx, []biblio.Loan{loan})
	return &enriched[0], nil
}

// Return closes a loan by recording its return date. Admin or editor.
func (g *LoansGateway) Return(ctx context.Context, id int, returnDate biblio.Date) (*biblio.EnrichedLoan, error) {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return nil, err
	}

	var loan biblio.Loan
	err := g.client.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/loans/%d", id),
		body:   map[string]string{"return_date": returnDate.String()},
		authed: true,
	}, &loan)
	if err != nil {
		return nil, err
	}

	enriched := g.enrichAll(ctx, []biblio.Loan{loan})
	return &enriched[0], nil
}

// Delete removes a loan record. Admin or editor.
func (g *LoansGateway) Delete(ctx context.Context, id int) error {
	if err := g.client.policy.Require(biblio.RoleAdmin, biblio.RoleEditor); err != nil {
		return err
	}

	return g.client.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/loans/%d", id),
		authed: true,
	}, nil)
}

// ForUser returns the loans belonging to one user. A zero userID means the
// current session's subject.
func (g *LoansGateway) ForUser(ctx context.Context, userID int) ([]biblio.EnrichedLoan, error) {
	if userID == 0 {
		subject, err := strconv.Atoi(g.client.policy.Subject())
		if err != nil {
			return nil, biblio.ErrNotAuthenticated
		}
		userID = subject
	}

	loans, err := g.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]biblio.EnrichedLoan, 0, len(loans))
	for _, loan := range loans {
		if loan.UserID == userID {
			matches = append(matches, loan)
		}
	}
	return matches, nil
}

// Active returns the loans that are still open.
func (g *LoansGateway) Active(ctx context.Context) ([]biblio.EnrichedLoan, error) {
	loans, err := g.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]biblio.EnrichedLoan, 0, len(loans))
	for _, loan := range loans {
		if loan.ReturnDate == nil {
			matches = append(matches, loan)
		}
	}
	return matches, nil
}

// Overdue returns the open loans past their due date.
func (g *LoansGateway) Overdue(ctx context.Context) ([]biblio.EnrichedLoan, error) {
	loans, err := g.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]biblio.EnrichedLoan, 0, len(loans))
	for _, loan := range loans {
		if loan.IsOverdue {
			matches = append(matches, loan)
		}
	}
	return matches, nil
}

// enrichAll joins user and book display fields and the derived lifecycle
// state into each loan. Users come from one listing call when the session
// can list, otherwise from one lookup per distinct referenced id; books
// ride the public catalog listing. Enrichment failures degrade to missing
// display fields, never to a failed result.
func (g *LoansGateway) enrichAll(ctx context.Context, loans []biblio.Loan) []biblio.EnrichedLoan {
	users := g.referencedUsers(ctx, loans)
	books := g.referencedBooks(ctx)

	enriched := make([]biblio.EnrichedLoan, 0, len(loans))
	for _, loan := range loans {
		row := biblio.EnrichedLoan{
			Loan:      loan,
			Status:    biblio.Status(loan),
			IsOverdue: biblio.IsOverdue(loan),
			DueDate:   biblio.DueDate(loan.LoanDate),
		}

		if user, ok := users[loan.UserID]; ok {
			row.UserName = user.Name
			row.UserEmail = user.Email
		}
		if book, ok := books[loan.BookID]; ok {
			row.BookTitle = book.Title
			row.BookAuthor = book.AuthorName
		}

		enriched = append(enriched, row)
	}
	return enriched
}

func (g *LoansGateway) referencedUsers(ctx context.Context, loans []biblio.Loan) map[int]biblio.User {
	users := map[int]biblio.User{}

	if g.client.policy.IsAdmin() {
		all, err := g.client.users.List(ctx)
		if err != nil {
			g.client.logger.Debug("user enrichment unavailable: %v", err)
			return users
		}
		for _, user := range all {
			users[user.ID] = user
		}
		return users
	}

	// Editors cannot list accounts, so fall back to one lookup per
	// distinct referenced id.
	for _, loan := range loans {
		if loan.UserID == 0 {
			continue
		}
		if _, seen := users[loan.UserID]; seen {
			continue
		}
		user, err := g.client.users.Get(ctx, loan.UserID)
		if err != nil {
			continue
		}
		users[loan.UserID] = *user
	}
	return users
}

func (g *LoansGateway) referencedBooks(ctx context.Context) map[int]biblio.EnrichedBook {
	books := map[int]biblio.EnrichedBook{}

	all, err := g.client.books.List(ctx)
	if err != nil {
		g.client.logger.Debug("book enrichment unavailable: %v", err)
		return books
	}
	for _, book := range all {
		books[book.ID] = book
	}
	return books
}
