package core

import (
	"sort"
	"strings"
)

// DefaultCategory is substituted for expenses without a category label.
const DefaultCategory = "Uncategorized"

// UnknownTypePolicy controls how the daily series treats transaction types
// it does not recognize. The historical behavior was to silently count
// anything that is not income as an expense; that is kept available as an
// explicit, named policy rather than an implicit fallback.
type UnknownTypePolicy string

const (
	TreatUnknownAsExpense UnknownTypePolicy = "treat_as_expense"
	IgnoreUnknown         UnknownTypePolicy = "ignore"
)

type (
	// NetworthPoint is one step of the running net-worth series.
	NetworthPoint struct {
		Date     Date  `json:"date"`
		Networth Money `json:"networth"`
	}

	// DailyFlow is the income and expense total for one calendar day.
	DailyFlow struct {
		Date    Date  `json:"date"`
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
	}

	// CategoryAmount is one bucket of the spending breakdown. Share is the
	// bucket's fraction of the breakdown total, in [0, 1].
	CategoryAmount struct {
		Name   string  `json:"name"`
		Amount Money   `json:"amount"`
		Share  float64 `json:"share"`
	}

	// Breakdown is the per-category spending view plus its grand total.
	Breakdown struct {
		Buckets []CategoryAmount `json:"buckets"`
		Total   Money            `json:"total"`
	}

	// Summary holds the aggregate totals shown on the dashboard.
	Summary struct {
		Income          Money `json:"income"`
		Expenses        Money `json:"expenses"`
		InitialNetworth Money `json:"initial_networth"`
		Networth        Money `json:"networth"`
	}
)

// findBaseline returns the first initial_networth transaction. Only one is
// meaningful per user; if several exist the first found wins.
func findBaseline(txs []Transaction) (Transaction, bool) {
	for _, t := range txs {
		if t.Type == InitialNetworth {
			return t, true
		}
	}
	return Transaction{}, false
}

// sortedFlows returns a fresh slice of the non-baseline transactions,
// stably sorted ascending by calendar day. The input is never mutated.
func sortedFlows(txs []Transaction) []Transaction {
	flows := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Type != InitialNetworth {
			flows = append(flows, t)
		}
	}
	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})
	return flows
}

// NetworthSeries derives the running net-worth series. The baseline amount
// seeds the running total (zero if absent) and, when positive, contributes a
// leading point at the baseline's date. Every non-baseline transaction then
// emits one point: income adds, expense subtracts, anything else carries the
// total forward unchanged. An empty input yields an empty series.
func NetworthSeries(txs []Transaction) []NetworthPoint {
	if len(txs) == 0 {
		return nil
	}

	baseline, hasBaseline := findBaseline(txs)
	flows := sortedFlows(txs)

	series := make([]NetworthPoint, 0, len(flows)+1)
	var running int64
	if hasBaseline {
		running = baseline.Amount.Cents
		if running > 0 {
			series = append(series, NetworthPoint{Date: baseline.Date, Networth: Money{Cents: running}})
		}
	}
	for _, t := range flows {
		switch t.Type {
		case Income:
			running += t.Amount.Cents
		case Expense:
			running -= t.Amount.Cents
		}
		series = append(series, NetworthPoint{Date: t.Date, Networth: Money{Cents: running}})
	}
	return series
}

// DailyFlows groups non-baseline transactions by calendar day and totals the
// income and expense buckets per day, ascending by date. Unrecognized types
// follow the given policy: counted as expense, or skipped entirely.
func DailyFlows(txs []Transaction, policy UnknownTypePolicy) []DailyFlow {
	if len(txs) == 0 {
		return nil
	}

	byDay := make(map[string]*DailyFlow)
	for _, t := range txs {
		if t.Type == InitialNetworth {
			continue
		}
		if !t.Type.IsFlow() && policy != TreatUnknownAsExpense {
			continue
		}
		key := t.Date.Key()
		flow := byDay[key]
		if flow == nil {
			flow = &DailyFlow{Date: t.Date}
			byDay[key] = flow
		}
		if t.Type == Income {
			flow.Income.Cents += t.Amount.Cents
		} else {
			flow.Expense.Cents += t.Amount.Cents
		}
	}

	out := make([]DailyFlow, 0, len(byDay))
	for _, flow := range byDay {
		out = append(out, *flow)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SpendingByCategory totals expense transactions per category, defaulting the
// label to DefaultCategory when absent. Buckets are sorted descending by
// amount with the category name as tiebreak so equal sums order
// reproducibly. Each bucket carries its share of the total.
func SpendingByCategory(txs []Transaction) Breakdown {
	sums := make(map[string]int64)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		name := strings.TrimSpace(t.Category)
		if name == "" {
			name = DefaultCategory
		}
		sums[name] += t.Amount.Cents
	}

	var total int64
	buckets := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		buckets = append(buckets, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
		total += cents
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Amount.Cents != buckets[j].Amount.Cents {
			return buckets[i].Amount.Cents > buckets[j].Amount.Cents
		}
		return buckets[i].Name < buckets[j].Name
	})
	if total > 0 {
		for i := range buckets {
			buckets[i].Share = float64(buckets[i].Amount.Cents) / float64(total)
		}
	}
	return Breakdown{Buckets: buckets, Total: Money{Cents: total}}
}

// Summarize computes the aggregate totals. Net worth is baseline plus income
// minus expenses; with cent-level amounts the identity holds exactly.
func Summarize(txs []Transaction) Summary {
	var income, expenses, initial int64
	if baseline, ok := findBaseline(txs); ok {
		initial = baseline.Amount.Cents
	}
	for _, t := range txs {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expenses += t.Amount.Cents
		}
	}
	return Summary{
		Income:          Money{Cents: income},
		Expenses:        Money{Cents: expenses},
		InitialNetworth: Money{Cents: initial},
		Networth:        Money{Cents: initial + income - expenses},
	}
}
