// Package worker keeps an on-disk JSON export of the transaction list in
// step with the store, driven by change events from the broker. It also
// carries the one-shot migration that pushes a guest ledger into an account.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"buckaroo/internal/amqp"
	"buckaroo/internal/core"
	"buckaroo/internal/repository"
)

const exportFileName = "transactions.json"

// ExportWorker rewrites the export file after changes. Bursts of changes are
// coalesced: a change arms a timer and only the timer firing exports.
type ExportWorker struct {
	repo      repository.TransactionRepository
	exportDir string
	debounce  time.Duration
	kicks     chan struct{}
}

// exportFile is the on-disk document. Records use the same shape as the
// wire format so an export can be re-imported.
type exportFile struct {
	ExportedAt   time.Time           `json:"exported_at"`
	Count        int                 `json:"count"`
	Transactions []repository.Record `json:"transactions"`
}

func NewExportWorker(repo repository.TransactionRepository, exportDir string, debounce time.Duration) *ExportWorker {
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	return &ExportWorker{
		repo:      repo,
		exportDir: exportDir,
		debounce:  debounce,
		kicks:     make(chan struct{}, 1),
	}
}

// HandleChangeMessage processes a single change event from AMQP.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change event",
		"op", msg.Op,
		"id", msg.ID)

	// Never block the consumer; a pending kick already covers this change.
	select {
	case w.kicks <- struct{}{}:
	default:
	}
	return nil
}

// Run consumes change events and exports until the context is cancelled.
// An initial export runs at startup so the file exists even without traffic.
func (w *ExportWorker) Run(ctx context.Context, events *amqp.Client) error {
	if err := w.Export(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.ConsumeChanges(ctx, w.HandleChangeMessage)
	})

	g.Go(func() error {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return ctx.Err()
			case <-w.kicks:
				if timer == nil {
					timer = time.NewTimer(w.debounce)
					fire = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.debounce)
				}
			case <-fire:
				timer = nil
				fire = nil
				if err := w.Export(ctx); err != nil {
					slog.ErrorContext(ctx, "Export failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// Export writes the current transaction list to the export file. The file
// is replaced atomically so readers never see a partial document.
func (w *ExportWorker) Export(ctx context.Context) error {
	txs, err := w.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	records := make([]repository.Record, 0, len(txs))
	for _, tx := range txs {
		records = append(records, repository.FromTransaction(tx))
	}

	doc := exportFile{
		ExportedAt:   time.Now().UTC(),
		Count:        len(records),
		Transactions: records,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.exportDir, exportFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close export: %w", err)
	}

	target := filepath.Join(w.exportDir, exportFileName)
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("install export: %w", err)
	}

	slog.InfoContext(ctx, "Export written", "path", target, "count", len(records))
	return nil
}

// MigrateResult summarizes a guest-to-account migration.
type MigrateResult struct {
	Total    int
	Migrated int
	Failed   int
}

// Migrate copies every transaction from the source into the target. Records
// are created fresh on the target; source ids are local and not carried over.
// Failures are logged and counted, the rest of the ledger still migrates.
func Migrate(ctx context.Context, source, target repository.TransactionRepository) (MigrateResult, error) {
	txs, err := source.List(ctx)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("list source transactions: %w", err)
	}

	result := MigrateResult{Total: len(txs)}
	for _, tx := range txs {
		draft := core.Draft{
			Amount:      tx.Amount,
			Type:        tx.Type,
			Category:    tx.Category,
			Description: tx.Description,
			Date:        tx.Date,
		}
		if _, err := target.Create(ctx, draft); err != nil {
			slog.ErrorContext(ctx, "Failed to migrate transaction",
				"id", tx.ID, "error", err)
			result.Failed++
			continue
		}
		result.Migrated++
	}

	slog.InfoContext(ctx, "Migration completed",
		"total", result.Total,
		"migrated", result.Migrated,
		"failed", result.Failed)

	if result.Failed > 0 {
		return result, fmt.Errorf("migrated %d of %d transactions, %d failed",
			result.Migrated, result.Total, result.Failed)
	}
	return result, nil
}
