package memory

import (
	"context"
	"sort"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/ledger"
)

// Compile-time check.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository over the store.
type LedgerRepo struct {
	store *Store
}

func cloneRegister(r *ledger.CashRegister) *ledger.CashRegister {
	c := *r
	c.Transactions = append([]ledger.Transaction(nil), r.Transactions...)
	if r.ClosingBalance != nil {
		cb := *r.ClosingBalance
		c.ClosingBalance = &cb
	}
	if r.ClosedAt != nil {
		ca := *r.ClosedAt
		c.ClosedAt = &ca
	}
	return &c
}

// GetRegister returns a copy of the owner's register.
func (r *LedgerRepo) GetRegister(ctx context.Context, owner ledger.OwnerKey) (*ledger.CashRegister, error) {
	defer r.store.lock(ctx)()

	reg, ok := r.store.registers[owner]
	if !ok {
		return nil, apperror.NewNotFound("cash register", owner.String())
	}
	return cloneRegister(reg), nil
}

// SaveRegister stores a copy keyed by owner; one register per owner is
// structural.
func (r *LedgerRepo) SaveRegister(ctx context.Context, reg *ledger.CashRegister) error {
	defer r.store.lock(ctx)()

	r.store.registers[reg.Owner] = cloneRegister(reg)
	return nil
}

// ListRegisters returns copies of every register.
func (r *LedgerRepo) ListRegisters(ctx context.Context) ([]*ledger.CashRegister, error) {
	defer r.store.lock(ctx)()

	out := make([]*ledger.CashRegister, 0, len(r.store.registers))
	for _, reg := range r.store.registers {
		out = append(out, cloneRegister(reg))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Owner.String() < out[j].Owner.String()
	})
	return out, nil
}

// AppendTransaction adds to the flat log and the owning register together.
func (r *LedgerRepo) AppendTransaction(ctx context.Context, t ledger.Transaction) error {
	defer r.store.lock(ctx)()

	reg, ok := r.store.registers[t.Owner()]
	if !ok {
		return apperror.NewNotFound("cash register", t.Owner().String())
	}

	r.store.txLog = append(r.store.txLog, t)
	reg.Append(t)
	return nil
}

// ListTransactions filters the flat log, ordered by date.
func (r *LedgerRepo) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	defer r.store.lock(ctx)()

	out := make([]ledger.Transaction, 0)
	for _, t := range r.store.txLog {
		if !matchTransaction(t, filter) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []ledger.Transaction{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchTransaction(t ledger.Transaction, f ledger.TransactionFilter) bool {
	if f.Owner != nil && t.Owner() != *f.Owner {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.Method != nil && t.Method != *f.Method {
		return false
	}
	if f.ProfessionalID != nil && t.ProfessionalID != *f.ProfessionalID {
		return false
	}
	if f.SettlementID != nil && t.SettlementID != *f.SettlementID {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Date.Before(*f.To) {
		return false
	}
	return true
}

// DeleteBySettlement removes tagged transactions from the flat log and every
// register.
func (r *LedgerRepo) DeleteBySettlement(ctx context.Context, settlementID id.ID) (int, error) {
	return r.deleteWhere(ctx, func(t ledger.Transaction) bool {
		return t.SettlementID == settlementID
	})
}

// DeleteByPayment removes tagged transactions from the flat log and every
// register.
func (r *LedgerRepo) DeleteByPayment(ctx context.Context, paymentID id.ID) (int, error) {
	return r.deleteWhere(ctx, func(t ledger.Transaction) bool {
		return t.PaymentID == paymentID
	})
}

func (r *LedgerRepo) deleteWhere(ctx context.Context, match func(ledger.Transaction) bool) (int, error) {
	defer r.store.lock(ctx)()

	kept := r.store.txLog[:0]
	removed := 0
	for _, t := range r.store.txLog {
		if match(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.store.txLog = kept

	for _, reg := range r.store.registers {
		reg.RemoveWhere(match)
	}
	return removed, nil
}
