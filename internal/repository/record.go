package repository

import (
	"bytes"
	"fmt"
	"strings"

	"buckaroo/internal/core"
)

// Record is the serialized transaction shape shared by the remote API and the
// guest store. Sources out in the wild are loose about scalar shapes: amounts
// arrive as numbers or strings and ids as strings or integers. All of that is
// normalized here, once, so nothing past the repository boundary ever sees an
// unparsed amount.
type Record struct {
	ID          FlexString `json:"id,omitempty"`
	Amount      FlexAmount `json:"amount"`
	Type        string     `json:"type"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"transaction_date"`
	UserID      string     `json:"user_id,omitempty"`
}

// FlexString accepts a JSON string or any scalar token and keeps its text.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = FlexString(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	return nil
}

// FlexAmount holds cents. Unmarshaling accepts a JSON number or a decimal
// string; anything malformed or negative coerces to zero cents rather than
// failing the whole list. That silent-coercion policy is deliberate and
// covered by tests.
type FlexAmount int64

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	token := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	cents, err := core.ParseDecimalToCents(token)
	if err != nil {
		cents = 0
	}
	*a = FlexAmount(cents)
	return nil
}

// MarshalJSON renders the amount as a plain two-decimal JSON number.
func (a FlexAmount) MarshalJSON() ([]byte, error) {
	return []byte(core.Money{Cents: int64(a)}.String()), nil
}

// Transaction converts the record to the domain type. A date that does not
// parse is an error: day-level ordering depends on it, so it cannot be
// defaulted away like a bad amount.
func (r Record) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse date %q: %w", r.ID, r.Date, err)
	}
	return core.Transaction{
		ID:          string(r.ID),
		Amount:      core.Money{Cents: int64(r.Amount)},
		Type:        core.Type(r.Type),
		Category:    r.Category,
		Description: r.Description,
		Date:        date,
		UserID:      r.UserID,
	}, nil
}

// FromDraft builds the wire shape of a create or update request.
func FromDraft(d core.Draft) Record {
	return Record{
		Amount:      FlexAmount(d.Amount.Cents),
		Type:        string(d.Type),
		Category:    d.Category,
		Description: d.Description,
		Date:        d.Date.Key(),
	}
}

// FromTransaction builds the stored shape of an owned transaction.
func FromTransaction(t core.Transaction) Record {
	return Record{
		ID:          FlexString(t.ID),
		Amount:      FlexAmount(t.Amount.Cents),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.Key(),
		UserID:      t.UserID,
	}
}

// Transactions converts a decoded list, failing on the first bad record.
func Transactions(records []Record) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		t, err := r.Transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
