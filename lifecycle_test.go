package biblio_test

import (
	"encoding/json"
	"testing"
	"time"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) biblio.Date {
	t.Helper()
	d, err := biblio.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name     string
		loanDate string
		expected string
	}{
		{"mid month", "2024-03-01", "2024-03-31"},
		{"month rollover", "2024-01-15", "2024-02-14"},
		{"year rollover", "2023-12-15", "2024-01-14"},
		{"leap february", "2024-02-01", "2024-03-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := biblio.DueDate(date(t, tt.loanDate))
			assert.Equal(t, tt.expected, due.String())
		})
	}
}

func TestStatusAt(t *testing.T) {
	returned := date(t, "2024-01-20")

	tests := []struct {
		name       string
		loan       biblio.Loan
		now        string
		expected   biblio.LoanStatus
		wantsOverd bool
	}{
		{
			name:     "open loan inside grace period is active",
			loan:     biblio.Loan{LoanDate: date(t, "2024-01-01")},
			now:      "2024-01-20",
			expected: biblio.StatusActive,
		},
		{
			name:       "open loan past due date is overdue",
			loan:       biblio.Loan{LoanDate: date(t, "2024-01-01")},
			now:        "2024-02-05",
			expected:   biblio.StatusOverdue,
			wantsOverd: true,
		},
		{
			name:     "returned loan is returned regardless of dates",
			loan:     biblio.Loan{LoanDate: date(t, "2023-01-01"), ReturnDate: &returned},
			now:      "2024-02-05",
			expected: biblio.StatusReturned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := date(t, tt.now).Time()
			assert.Equal(t, tt.expected, biblio.StatusAt(tt.loan, now))
			assert.Equal(t, tt.wantsOverd, biblio.IsOverdueAt(tt.loan, now))
		})
	}
}

func TestStatusAt_DueDateBoundary(t *testing.T) {
	loan := biblio.Loan{LoanDate: date(t, "2024-01-01")}
	dueMidnight := biblio.DueDate(loan.LoanDate).Time()

	t.Run("exact due-date instant is still active", func(t *testing.T) {
		assert.Equal(t, biblio.StatusActive, biblio.StatusAt(loan, dueMidnight))
		assert.False(t, biblio.IsOverdueAt(loan, dueMidnight))
	})

	t.Run("one second past the boundary is overdue", func(t *testing.T) {
		assert.Equal(t, biblio.StatusOverdue, biblio.StatusAt(loan, dueMidnight.Add(time.Second)))
	})

	t.Run("return on the due date wins over overdue", func(t *testing.T) {
		due := biblio.DueDate(loan.LoanDate)
		returned := loan
		returned.ReturnDate = &due
		assert.Equal(t, biblio.StatusReturned, biblio.StatusAt(returned, dueMidnight.Add(time.Hour)))
	})
}

func TestStatus_ReturnedIffReturnDateSet(t *testing.T) {
	open := biblio.Loan{LoanDate: date(t, "2024-01-01")}
	assert.NotEqual(t, biblio.StatusReturned, biblio.Status(open))

	rd := date(t, "2024-01-02")
	closed := biblio.Loan{LoanDate: date(t, "2024-01-01"), ReturnDate: &rd}
	assert.Equal(t, biblio.StatusReturned, biblio.Status(closed))
	assert.False(t, biblio.IsOverdue(closed))
}

func TestDate_JSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		loan := biblio.Loan{ID: 1, LoanDate: date(t, "2024-01-15")}

		data, err := json.Marshal(loan)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"loan_date":"2024-01-15"`)

		var decoded biblio.Loan
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, decoded.LoanDate.Equal(loan.LoanDate))
	})

	t.Run("null return date decodes to nil", func(t *testing.T) {
		var loan biblio.Loan
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"loan_date":"2024-01-01","return_date":null}`), &loan))
		assert.Nil(t, loan.ReturnDate)
	})

	t.Run("timestamp strings are truncated to the date", func(t *testing.T) {
		var d biblio.Date
		require.NoError(t, json.Unmarshal([]byte(`"2024-01-15T10:30:00Z"`), &d))
		assert.Equal(t, "2024-01-15", d.String())
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		var d biblio.Date
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
	})
}
