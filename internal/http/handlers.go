package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"buckaroo/internal/core"
	"buckaroo/internal/log"
	"buckaroo/internal/repository"
)

// transactionPayload is the request body for create and update. The amount is
// kept raw and parsed strictly: request input is user input, so a malformed
// amount is a validation error here, unlike the lenient zero-coercion the
// repository wire types apply to stored and remote data.
type transactionPayload struct {
	Amount      json.RawMessage `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"transaction_date"`
}

func (p transactionPayload) draft() (core.Draft, error) {
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return core.Draft{}, err
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Draft{}, repository.NewError(repository.KindValidation, "please enter a valid date", err)
	}
	return core.Draft{
		Amount:      amount,
		Type:        core.Type(p.Type),
		Category:    p.Category,
		Description: p.Description,
		Date:        date,
	}, nil
}

type networthPayload struct {
	Amount json.RawMessage `json:"amount"`
}

// parseAmount converts a raw JSON amount token, number or decimal string, into
// cents. A missing or non-numeric amount is a validation error.
func parseAmount(raw json.RawMessage) (core.Money, error) {
	token := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	cents, err := core.ParseDecimalToCents(token)
	if err != nil {
		return core.Money{}, repository.NewError(repository.KindValidation, "please enter a valid amount", err)
	}
	return core.Money{Cents: cents}, nil
}

// dashboardResponse carries every derived view in one document.
type dashboardResponse struct {
	Transactions []repository.Record  `json:"transactions"`
	Networth     []core.NetworthPoint `json:"networth_series"`
	Daily        []core.DailyFlow     `json:"daily_series"`
	Spending     core.Breakdown       `json:"spending"`
	Summary      core.Summary         `json:"summary"`
}

type transactionsResponse struct {
	Transactions []repository.Record `json:"transactions"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Refresh(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Transactions: toRecords(snap.Transactions),
		Networth:     snap.Networth,
		Daily:        snap.Daily,
		Spending:     snap.Spending,
		Summary:      snap.Summary,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Refresh(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: toRecords(snap.Transactions)})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	draft, err := payload.draft()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	tx, err := s.dashboard.Create(r.Context(), draft)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldTransactionID, tx.ID,
		log.FieldTransactionType, string(tx.Type),
		log.FieldAmountCents, tx.Amount.Cents)

	writeJSON(w, http.StatusCreated, repository.FromTransaction(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload transactionPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	draft, err := payload.draft()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	tx, err := s.dashboard.Update(r.Context(), id, draft)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, repository.FromTransaction(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.dashboard.Delete(r.Context(), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetNetworth(w http.ResponseWriter, r *http.Request) {
	var payload networthPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	tx, err := s.dashboard.SetBaseline(r.Context(), amount)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Baseline set",
		log.FieldTransactionID, tx.ID,
		log.FieldAmountCents, tx.Amount.Cents)

	writeJSON(w, http.StatusOK, repository.FromTransaction(tx))
}

func toRecords(txs []core.Transaction) []repository.Record {
	records := make([]repository.Record, 0, len(txs))
	for _, tx := range txs {
		records = append(records, repository.FromTransaction(tx))
	}
	return records
}
