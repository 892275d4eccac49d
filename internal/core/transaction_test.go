package core

import (
	"errors"
	"strings"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Amount: Money{Cents: 100},
		Type:   Expense,
		Date:   NewDate(2024, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// A zero-amount baseline is allowed; a zero-amount flow is not.
	baseline := Draft{Amount: Money{}, Type: InitialNetworth, Date: NewDate(2024, 1, 1)}
	if err := baseline.Validate(); err != nil {
		t.Fatalf("zero baseline should validate, got %v", err)
	}

	cases := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"zero amount flow", Draft{Amount: Money{}, Type: Income, Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{"negative amount", Draft{Amount: Money{Cents: -5}, Type: Expense, Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{"unknown type", Draft{Amount: Money{Cents: 100}, Type: Type("transfer"), Date: NewDate(2024, 1, 1)}, ErrInvalidType},
		{"missing date", Draft{Amount: Money{Cents: 100}, Type: Income}, ErrMissingDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.draft.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	long := good
	long.Description = strings.Repeat("x", 201)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long description")
	}
}

func TestDateKeyAndOrdering(t *testing.T) {
	a := NewDate(2024, 1, 2)
	b := NewDate(2024, 1, 10)
	if a.Key() != "2024-01-02" {
		t.Fatalf("unexpected key %q", a.Key())
	}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("date ordering broken")
	}

	parsed, err := ParseDate("2024-01-02")
	if err != nil || !parsed.Equal(a.Time) {
		t.Fatalf("parse: %v %v", parsed, err)
	}
	if _, err := ParseDate("02/01/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestTypePredicates(t *testing.T) {
	if !Income.IsFlow() || !Expense.IsFlow() || InitialNetworth.IsFlow() {
		t.Fatalf("IsFlow misclassifies")
	}
	if !InitialNetworth.Valid() || Type("transfer").Valid() {
		t.Fatalf("Valid misclassifies")
	}
}
