package biblio

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// User is a library account. Ids are server-assigned.
type User struct {
	ID    int      `json:"id,omitempty"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Role  UserRole `json:"role,omitempty"`
}

// Author is a book author
type Author struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Book references its Author by id. The client does not enforce the
// reference; a broken one degrades to placeholder display text.
type Book struct {
	ID       int    `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	AuthorID int    `json:"author_id,omitempty"`
}

// Loan references a User and a Book by id. ReturnDate is nil while the
// loan is open.
type Loan struct {
	ID         int   `json:"id,omitempty"`
	UserID     int   `json:"user_id,omitempty"`
	BookID     int   `json:"book_id,omitempty"`
	LoanDate   Date  `json:"loan_date"`
	ReturnDate *Date `json:"return_date,omitempty"`
}

// EnrichedBook is a Book joined with its author's name for display.
type EnrichedBook struct {
	Book
	AuthorName string `json:"author_name"`
}

// EnrichedLoan is a Loan joined with user and book display fields plus the
// derived lifecycle state.
type EnrichedLoan struct {
	Loan
	UserName   string     `json:"user_name,omitempty"`
	UserEmail  string     `json:"user_email,omitempty"`
	BookTitle  string     `json:"book_title,omitempty"`
	BookAuthor string     `json:"book_author,omitempty"`
	Status     LoanStatus `json:"status"`
	IsOverdue  bool       `json:"is_overdue"`
	DueDate    Date       `json:"due_date"`
}

// RegisterPayload is the public registration request body.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// ProfilePayload updates the caller's own account via /profile.
type ProfilePayload struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

func (p ProfilePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Length(6, 100)),
	)
}

// AuthorPayload creates or updates an author.
type AuthorPayload struct {
	Name string `json:"name"`
}

func (a AuthorPayload) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 200)),
	)
}

// BookPayload creates or updates a book.
type BookPayload struct {
	Title    string `json:"title"`
	AuthorID int    `json:"author_id"`
}

func (b BookPayload) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&b.AuthorID, validation.Required, validation.Min(1)),
	)
}

// LoanPayload creates a loan.
type LoanPayload struct {
	UserID   int  `json:"user_id"`
	BookID   int  `json:"book_id"`
	LoanDate Date `json:"loan_date"`
}

func (l LoanPayload) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.UserID, validation.Required, validation.Min(1)),
		validation.Field(&l.BookID, validation.Required, validation.Min(1)),
	)
}
