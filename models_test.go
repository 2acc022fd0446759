package biblio_test

import (
	"testing"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/stretchr/testify/assert"
)

func TestRegisterPayload_Validate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		payload := biblio.RegisterPayload{Name: "Ana", Email: "ana@example.com", Password: "secret1"}
		assert.NoError(t, payload.Validate())
	})

	t.Run("rejects bad email", func(t *testing.T) {
		payload := biblio.RegisterPayload{Name: "Ana", Email: "not-an-email", Password: "secret1"}
		assert.Error(t, payload.Validate())
	})

	t.Run("rejects missing password", func(t *testing.T) {
		payload := biblio.RegisterPayload{Name: "Ana", Email: "ana@example.com"}
		assert.Error(t, payload.Validate())
	})
}

func TestBookPayload_Validate(t *testing.T) {
	assert.NoError(t, biblio.BookPayload{Title: "Cien años de soledad", AuthorID: 3}.Validate())
	assert.Error(t, biblio.BookPayload{AuthorID: 3}.Validate())
	assert.Error(t, biblio.BookPayload{Title: "Untitled"}.Validate())
}

func TestAuthorPayload_Validate(t *testing.T) {
	assert.NoError(t, biblio.AuthorPayload{Name: "Borges"}.Validate())
	assert.Error(t, biblio.AuthorPayload{}.Validate())
}

func TestLoanPayload_Validate(t *testing.T) {
	assert.NoError(t, biblio.LoanPayload{UserID: 8, BookID: 2}.Validate())
	assert.Error(t, biblio.LoanPayload{BookID: 2}.Validate())
	assert.Error(t, biblio.LoanPayload{UserID: 8}.Validate())
}
