// Package services orchestrates the fetch-and-recompute cycle between the
// transaction repository and the derivation engine.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"buckaroo/internal/core"
	"buckaroo/internal/repository"
)

// ChangePublisher is satisfied by the AMQP client. A nil publisher disables
// change events; a failed publish never fails the mutation that triggered it.
type ChangePublisher interface {
	PublishChange(ctx context.Context, op, id string) error
}

// Change operations, mirrored by the AMQP message constants.
const (
	opCreated = "created"
	opUpdated = "updated"
	opDeleted = "deleted"
)

// Snapshot is one immutable recomputation of every dashboard view. Each
// refresh builds a whole new snapshot from a fresh transaction list; nothing
// is patched incrementally.
type Snapshot struct {
	Transactions []core.Transaction
	Networth     []core.NetworthPoint
	Daily        []core.DailyFlow
	Spending     core.Breakdown
	Summary      core.Summary
}

// DashboardService owns the installed snapshot and serializes who may
// replace it. Refreshes are numbered when issued and only the newest issued
// refresh installs its result, so a slow response that resolves late can
// never overwrite a newer one.
type DashboardService struct {
	repo   repository.TransactionRepository
	events ChangePublisher
	policy core.UnknownTypePolicy

	seq     atomic.Uint64
	mu      sync.RWMutex
	applied uint64
	current Snapshot
}

func NewDashboardService(repo repository.TransactionRepository, events ChangePublisher, policy core.UnknownTypePolicy) *DashboardService {
	if policy == "" {
		policy = core.TreatUnknownAsExpense
	}
	return &DashboardService{
		repo:   repo,
		events: events,
		policy: policy,
	}
}

func (s *DashboardService) derive(txs []core.Transaction) Snapshot {
	return Snapshot{
		Transactions: txs,
		Networth:     core.NetworthSeries(txs),
		Daily:        core.DailyFlows(txs, s.policy),
		Spending:     core.SpendingByCategory(txs),
		Summary:      core.Summarize(txs),
	}
}

// Refresh fetches a fresh transaction list and recomputes all views.
func (s *DashboardService) Refresh(ctx context.Context) (Snapshot, error) {
	seq := s.seq.Add(1)

	txs, err := s.repo.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	snap := s.derive(txs)

	s.mu.Lock()
	if seq > s.applied {
		s.applied = seq
		s.current = snap
	} else {
		slog.DebugContext(ctx, "Discarding stale refresh", "seq", seq, "applied", s.applied)
	}
	s.mu.Unlock()

	return snap, nil
}

// Snapshot returns the last installed snapshot. Before the first refresh it
// is the empty dashboard, which callers render as the empty state.
func (s *DashboardService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Create validates the draft, stores it, and refreshes the views.
func (s *DashboardService) Create(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, repository.NewError(repository.KindValidation, "please enter a valid transaction", err)
	}

	tx, err := s.repo.Create(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, opCreated, tx.ID)
	s.refreshAfterChange(ctx)
	return tx, nil
}

// Update validates the draft and replaces the whole record.
func (s *DashboardService) Update(ctx context.Context, id string, draft core.Draft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, repository.NewError(repository.KindValidation, "please enter a valid transaction", err)
	}

	tx, err := s.repo.Update(ctx, id, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.publish(ctx, opUpdated, tx.ID)
	s.refreshAfterChange(ctx)
	return tx, nil
}

// Delete removes the record and refreshes the views.
func (s *DashboardService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.publish(ctx, opDeleted, id)
	s.refreshAfterChange(ctx)
	return nil
}

// SetBaseline records the starting balance. At most one baseline is active:
// setting it again replaces the existing record instead of appending.
func (s *DashboardService) SetBaseline(ctx context.Context, amount core.Money) (core.Transaction, error) {
	now := time.Now()
	draft := core.Draft{
		Amount:      amount,
		Type:        core.InitialNetworth,
		Category:    core.BaselineCategory,
		Description: core.BaselineDescription,
		Date:        core.NewDate(now.Year(), int(now.Month()), now.Day()),
	}
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, repository.NewError(repository.KindValidation, "please enter a valid amount", err)
	}

	txs, err := s.repo.List(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("look up existing baseline: %w", err)
	}

	for _, t := range txs {
		if t.Type == core.InitialNetworth {
			updated, err := s.repo.Update(ctx, t.ID, draft)
			if err != nil {
				return core.Transaction{}, fmt.Errorf("replace baseline %s: %w", t.ID, err)
			}
			s.publish(ctx, opUpdated, updated.ID)
			s.refreshAfterChange(ctx)
			return updated, nil
		}
	}

	created, err := s.repo.Create(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create baseline: %w", err)
	}
	s.publish(ctx, opCreated, created.ID)
	s.refreshAfterChange(ctx)
	return created, nil
}

func (s *DashboardService) publish(ctx context.Context, op, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishChange(ctx, op, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"op", op, "id", id, "error", err)
	}
}

func (s *DashboardService) refreshAfterChange(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to refresh after change", "error", err)
	}
}
