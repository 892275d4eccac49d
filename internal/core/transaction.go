package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income          Type = "income"
	Expense         Type = "expense"
	InitialNetworth Type = "initial_networth"
)

// Baseline convention: the starting balance is recorded as a single
// initial_networth transaction with these fixed labels. Setting it again
// replaces the existing record instead of appending a second one.
const (
	BaselineCategory    = "Initial Balance"
	BaselineDescription = "Initial networth"
)

// GuestUserID tags transactions owned by an unauthenticated local session.
const GuestUserID = "guest"

type (
	Type string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Amount      Money
		Type        Type
		Category    string
		Description string
		Date        Date
		UserID      string
	}

	// Draft is the caller-supplied shape for create and update operations.
	// Updates replace the whole record; there is no partial-field patch.
	Draft struct {
		Amount      Money
		Type        Type
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrMissingDate   = errors.New("missing transaction date")
)

func (t Type) Valid() bool {
	switch t {
	case Income, Expense, InitialNetworth:
		return true
	default:
		return false
	}
}

// IsFlow reports whether the type contributes to running net worth.
func (t Type) IsFlow() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Key returns the calendar-day grouping key. Two transactions on the same
// day share a key regardless of any time component the source attached.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

func (d Date) String() string {
	return d.Key()
}

// Before orders dates by calendar day.
func (d Date) Before(other Date) bool {
	return d.Key() < other.Key()
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Key() + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks a draft before any network or storage interaction.
// Amounts are non-negative magnitudes; flow transactions must be strictly
// positive, a baseline may be zero.
func (dr Draft) Validate() error {
	if !dr.Type.Valid() {
		return ErrInvalidType
	}
	if dr.Date.IsZero() {
		return ErrMissingDate
	}
	if len(dr.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if dr.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if dr.Type.IsFlow() && dr.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}
