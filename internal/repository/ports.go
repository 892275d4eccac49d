// Package repository defines the uniform contract over the two transaction
// sources (the remote authenticated API and the local guest store), the
// failure taxonomy both adapters normalize into, and the serialized record
// shape they share.
package repository

import (
	"context"

	"buckaroo/internal/core"
)

// TransactionRepository is the capability set both sources implement. The
// concrete variant is chosen once at session start and injected; callers
// never branch on session mode.
type TransactionRepository interface {
	// List returns a fresh snapshot of every transaction.
	List(ctx context.Context) ([]core.Transaction, error)

	// Create stores a new transaction and returns it with the id the owning
	// source assigned.
	Create(ctx context.Context, draft core.Draft) (core.Transaction, error)

	// Update replaces the whole record with the given id. A missing id is a
	// not-found error, never a silent no-op.
	Update(ctx context.Context, id string, draft core.Draft) (core.Transaction, error)

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}
