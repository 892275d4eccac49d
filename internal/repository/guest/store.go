// Package guest implements the transaction repository for unauthenticated
// sessions. The whole transaction list is serialized as JSON under a single
// fixed key in a local key-value store; every operation is a read-modify-write
// of the full list.
package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"buckaroo/internal/core"
	"buckaroo/internal/repository"
)

// StorageKey is the fixed key the guest transaction list lives under.
const StorageKey = "guestTransactions"

// KV is the slice of the storage layer the guest store needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store owns guest transactions. Ids are millisecond timestamps, bumped when
// two creates land in the same millisecond so they stay unique and monotonic
// within a session.
type Store struct {
	kv     KV
	mu     sync.Mutex
	lastID int64
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// List implements repository.TransactionRepository.
func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := repository.Transactions(records)
	if err != nil {
		return nil, repository.NewError(repository.KindServer, "stored guest data is corrupted", err)
	}
	return txs, nil
}

// Create implements repository.TransactionRepository.
func (s *Store) Create(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	rec := repository.FromDraft(draft)
	rec.ID = repository.FlexString(s.nextID())
	rec.UserID = core.GuestUserID

	records = append(records, rec)
	if err := s.save(ctx, records); err != nil {
		return core.Transaction{}, err
	}

	tx, err := rec.Transaction()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("build created transaction: %w", err)
	}
	slog.InfoContext(ctx, "Guest transaction created", "id", tx.ID, "type", tx.Type)
	return tx, nil
}

// Update implements repository.TransactionRepository. A missing id leaves the
// stored list untouched and is surfaced as not-found, never swallowed.
func (s *Store) Update(ctx context.Context, id string, draft core.Draft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	for i, rec := range records {
		if string(rec.ID) != id {
			continue
		}
		replacement := repository.FromDraft(draft)
		replacement.ID = rec.ID
		replacement.UserID = rec.UserID
		records[i] = replacement

		if err := s.save(ctx, records); err != nil {
			return core.Transaction{}, err
		}
		tx, err := replacement.Transaction()
		if err != nil {
			return core.Transaction{}, fmt.Errorf("build updated transaction: %w", err)
		}
		slog.InfoContext(ctx, "Guest transaction updated", "id", id)
		return tx, nil
	}

	return core.Transaction{}, repository.NotFound(id)
}

// Delete implements repository.TransactionRepository.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if string(rec.ID) != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return repository.NotFound(id)
	}

	if err := s.save(ctx, kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Guest transaction deleted", "id", id)
	return nil
}

func (s *Store) load(ctx context.Context) ([]repository.Record, error) {
	value, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, repository.NewError(repository.KindConnectivity, "local storage is unavailable", err)
	}
	if !found || len(value) == 0 {
		return nil, nil
	}
	var records []repository.Record
	if err := json.Unmarshal(value, &records); err != nil {
		return nil, repository.NewError(repository.KindServer, "stored guest data is corrupted", err)
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, records []repository.Record) error {
	value, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal guest transactions: %w", err)
	}
	if err := s.kv.Put(ctx, StorageKey, value); err != nil {
		return repository.NewError(repository.KindConnectivity, "local storage is unavailable", err)
	}
	return nil
}

// nextID must be called with the mutex held.
func (s *Store) nextID() string {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}
