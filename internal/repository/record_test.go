package repository

import (
	"encoding/json"
	"testing"

	"buckaroo/internal/core"
)

func TestRecordNormalizesLooseShapes(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantCents int64
		wantID    string
	}{
		{"number amount", `{"id":"a1","amount":12.34,"type":"expense","transaction_date":"2024-01-02"}`, 1234, "a1"},
		{"string amount", `{"id":"a2","amount":"12.34","type":"expense","transaction_date":"2024-01-02"}`, 1234, "a2"},
		{"half-up third decimal", `{"id":"a3","amount":"500.005","type":"income","transaction_date":"2024-01-02"}`, 50001, "a3"},
		{"malformed amount coerces to zero", `{"id":"a4","amount":"oops","type":"expense","transaction_date":"2024-01-02"}`, 0, "a4"},
		{"missing amount coerces to zero", `{"id":"a5","type":"expense","transaction_date":"2024-01-02"}`, 0, "a5"},
		{"numeric id", `{"id":17,"amount":1,"type":"income","transaction_date":"2024-01-02"}`, 100, "17"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(tc.body), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tx, err := rec.Transaction()
			if err != nil {
				t.Fatalf("to transaction: %v", err)
			}
			if tx.Amount.Cents != tc.wantCents {
				t.Fatalf("expected %d cents, got %d", tc.wantCents, tx.Amount.Cents)
			}
			if tx.ID != tc.wantID {
				t.Fatalf("expected id %q, got %q", tc.wantID, tx.ID)
			}
		})
	}
}

func TestRecordRejectsBadDate(t *testing.T) {
	var rec Record
	body := `{"id":"x","amount":1,"type":"expense","transaction_date":"not-a-date"}`
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := rec.Transaction(); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}

func TestFromDraftRoundTrip(t *testing.T) {
	draft := core.Draft{
		Amount:      core.Money{Cents: 1500},
		Type:        core.Income,
		Category:    "Salary",
		Description: "March",
		Date:        core.NewDate(2024, 3, 1),
	}

	data, err := json.Marshal(FromDraft(draft))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tx, err := back.Transaction()
	if err != nil {
		t.Fatalf("to transaction: %v", err)
	}
	if tx.Amount.Cents != 1500 || tx.Type != core.Income || tx.Date.Key() != "2024-03-01" {
		t.Fatalf("round trip mismatch: %+v", tx)
	}
}
