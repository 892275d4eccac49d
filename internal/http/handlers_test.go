package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"buckaroo/internal/core"
	"buckaroo/internal/repository"
	"buckaroo/internal/repository/guest"
	"buckaroo/internal/services"
	"buckaroo/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := guest.NewStore(storage.NewMemoryKV())
	svc := services.NewDashboardService(store, nil, "")
	s := NewServer(":0", svc, nil)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func TestCreateTransactionNormalizesAmount(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		`{"amount": "500.005", "type": "income", "category": "Salary", "transaction_date": "2024-03-01"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}

	var rec repository.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("no id assigned: %s", body)
	}
	if rec.UserID != core.GuestUserID {
		t.Fatalf("unexpected owner: %s", body)
	}
	// Half-up rounding applied once at the boundary.
	if int64(rec.Amount) != 50001 {
		t.Fatalf("amount not normalized: %d cents", int64(rec.Amount))
	}
}

func TestCreateTransactionRejectsInvalidDraft(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"unknown type", `{"amount": "10", "type": "transfer", "transaction_date": "2024-03-01"}`},
		{"missing date", `{"amount": "10", "type": "expense"}`},
		{"bad date", `{"amount": "10", "type": "expense", "transaction_date": "03/01/2024"}`},
		{"zero flow amount", `{"amount": "0", "type": "expense", "transaction_date": "2024-03-01"}`},
		{"non-numeric amount", `{"amount": "abc", "type": "expense", "transaction_date": "2024-03-01"}`},
		{"missing amount", `{"type": "expense", "transaction_date": "2024-03-01"}`},
		{"non-numeric baseline amount", `{"amount": "abc", "type": "initial_networth", "transaction_date": "2024-03-01"}`},
		{"malformed json", `{"amount": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", tc.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status %d: %s", resp.StatusCode, body)
			}
			var er errorResponse
			if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
				t.Fatalf("expected error payload, got %s", body)
			}
		})
	}
}

func TestDashboardReflectsMutations(t *testing.T) {
	ts := newTestServer(t)

	payloads := []string{
		`{"amount": 1000, "type": "income", "category": "Salary", "transaction_date": "2024-03-01"}`,
		`{"amount": 200, "type": "expense", "category": "Food", "transaction_date": "2024-03-02"}`,
	}
	for _, p := range payloads {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", p)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: %d %s", resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d %s", resp.StatusCode, body)
	}

	var dash dashboardResponse
	if err := json.Unmarshal(body, &dash); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(dash.Transactions) != 2 {
		t.Fatalf("expected 2 transactions: %s", body)
	}
	if dash.Summary.Networth.Cents != 80000 {
		t.Fatalf("unexpected networth: %+v", dash.Summary)
	}
	if len(dash.Networth) != 2 || len(dash.Daily) != 2 {
		t.Fatalf("unexpected series: %s", body)
	}
	if len(dash.Spending.Buckets) != 1 || dash.Spending.Buckets[0].Name != "Food" {
		t.Fatalf("unexpected spending: %+v", dash.Spending)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		`{"amount": 50, "type": "expense", "category": "Food", "transaction_date": "2024-03-01"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	var created repository.Record
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/transactions/%s", ts.URL, created.ID),
		`{"amount": 75, "type": "expense", "category": "Transport", "transaction_date": "2024-03-05"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}
	var updated repository.Record
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.ID != created.ID || updated.Category != "Transport" || int64(updated.Amount) != 7500 {
		t.Fatalf("unexpected update result: %s", body)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%s", ts.URL, created.ID), "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	var list transactionsResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Transactions) != 0 {
		t.Fatalf("deleted transaction still listed: %s", body)
	}
}

func TestMutationsOnMissingIDReturnNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/transactions/missing",
		`{"amount": 10, "type": "expense", "transaction_date": "2024-03-01"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
}

func TestSetNetworthReplacesBaseline(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/networth", `{"amount": "1000"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set networth: %d %s", resp.StatusCode, body)
	}
	var first repository.Record
	if err := json.Unmarshal(body, &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.Type != string(core.InitialNetworth) || first.Category != core.BaselineCategory {
		t.Fatalf("baseline convention not applied: %s", body)
	}

	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/networth", `{"amount": "2500"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace networth: %d %s", resp.StatusCode, body)
	}
	var second repository.Record
	if err := json.Unmarshal(body, &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("baseline appended instead of replaced: %s vs %s", second.ID, first.ID)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	var list transactionsResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Transactions) != 1 {
		t.Fatalf("expected a single baseline: %s", body)
	}
}

func TestSetNetworthRejectsInvalidAmount(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/networth", `{"amount": "1000"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set networth: %d %s", resp.StatusCode, body)
	}

	cases := []struct {
		name string
		body string
	}{
		{"non-numeric string", `{"amount": "abc"}`},
		{"missing amount", `{}`},
		{"negative amount", `{"amount": "-50"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/networth", tc.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status %d: %s", resp.StatusCode, body)
			}
			var er errorResponse
			if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
				t.Fatalf("expected error payload, got %s", body)
			}
		})
	}

	// The stored baseline must survive every rejected request untouched.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	var list transactionsResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Transactions) != 1 {
		t.Fatalf("expected a single baseline: %s", body)
	}
	if got := int64(list.Transactions[0].Amount); got != 100000 {
		t.Fatalf("baseline overwritten: %d cents", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: %d", path, resp.StatusCode)
		}
	}
}

func TestResponsesCarrySecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", "")
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Fatalf("missing request id header")
	}
}
