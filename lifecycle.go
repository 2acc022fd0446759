package biblio

import (
	"encoding/json"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LoanPeriodDays is the fixed grace period between a loan and its due date.
// This is library policy, not configuration.
const LoanPeriodDays = 30

// LoanStatus is the derived classification of a loan
type LoanStatus = string

const (
	// StatusActive means the loan is open and inside its grace period
	StatusActive LoanStatus = "active"
	// StatusOverdue means the loan is open past its due date
	StatusOverdue LoanStatus = "overdue"
	// StatusReturned means the book came back; return always wins over overdue
	StatusReturned LoanStatus = "returned"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with time-zone-naive semantics. The API stores
// dates as ISO YYYY-MM-DD strings; we parse them in the local time zone,
// matching how the original client interpreted them. Mixing UTC and local
// comparisons would move the overdue boundary by up to a day, so every
// comparison in this package goes through this type.
type Date struct {
	t time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses an ISO YYYY-MM-DD string in the local time zone. Full
// timestamps are accepted and truncated to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return Date{t: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	if t, err := time.Parse(time.RFC1123, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	return Date{}, goerrors.New("invalid date: "+s, goerrors.CategoryBadInput)
}

// DateOf truncates a time to its local calendar date.
func DateOf(t time.Time) Date {
	local := t.In(time.Local)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// AddDays returns the date n calendar days later, rolling over months and
// years.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Time returns midnight local time on the date.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as an ISO YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts ISO date strings as well as full timestamps; null
// and empty strings decode to the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DueDate computes when a loan falls due: the loan date plus the fixed
// grace period.
func DueDate(loanDate Date) Date {
	return loanDate.AddDays(LoanPeriodDays)
}

// StatusAt derives the loan's status as observed at a given instant.
// A returned loan is returned no matter when it came back; return wins over
// overdue even on the due date itself. An open loan is overdue only when
// the instant is strictly after midnight local time on the due date, so a
// loan checked at the exact due-date instant is still active.
func StatusAt(loan Loan, now time.Time) LoanStatus {
	if loan.ReturnDate != nil {
		return StatusReturned
	}
	if now.After(DueDate(loan.LoanDate).Time()) {
		return StatusOverdue
	}
	return StatusActive
}

// Status derives the loan's status at the current time.
func Status(loan Loan) LoanStatus {
	return StatusAt(loan, time.Now())
}

// IsOverdueAt reports whether the loan is overdue at a given instant. Kept
// consistent with StatusAt by construction.
func IsOverdueAt(loan Loan, now time.Time) bool {
	return StatusAt(loan, now) == StatusOverdue
}

// IsOverdue reports whether the loan is overdue at the current time.
func IsOverdue(loan Loan) bool {
	return IsOverdueAt(loan, time.Now())
}
