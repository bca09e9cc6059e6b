package memory

import (
	"context"

	"clinicash/internal/core/tx"
)

// Compile-time check that TxManager implements tx.Manager.
var _ tx.Manager = (*TxManager)(nil)

// txKey marks a context as running inside a store transaction.
type txKey struct{}

// TxManager serializes operations over the store. Holding the store mutex
// for the whole span of RunInTransaction gives the engine its single-writer
// guarantees: no reader observes an appointment's totals without the
// matching register movement, and settlement generation computes over a
// stable snapshot.
//
// Mutations are applied directly; there is no rollback buffer. Services
// validate before mutating, so an error return means no state was touched.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager over the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn while holding the store lock.
// Nested calls reuse the lock already held by the enclosing call.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// lock acquires the store mutex for a single repository call made outside a
// transaction. Returns an unlock func; a no-op when the caller already
// holds the lock through RunInTransaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
