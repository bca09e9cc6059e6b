package ledger

import (
	"context"
	"time"

	"clinicash/internal/core/id"
)

// Repository defines persistence for registers and the flat transaction log.
//
// The flat log and the per-register embedded copies record the same
// movements; every mutation must keep both in step.
type Repository interface {
	// Register operations

	// GetRegister returns the register for an owner.
	GetRegister(ctx context.Context, owner OwnerKey) (*CashRegister, error)

	// SaveRegister creates or replaces the register for its owner.
	SaveRegister(ctx context.Context, reg *CashRegister) error

	// ListRegisters returns every provisioned register.
	ListRegisters(ctx context.Context) ([]*CashRegister, error)

	// Transaction log operations

	// AppendTransaction adds tx to the flat log and to its owning
	// register's embedded copy.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// ListTransactions returns flat-log entries matching the filter,
	// ordered by date.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)

	// DeleteBySettlement removes every transaction tagged with the
	// settlement id from the flat log and from all registers. Returns the
	// number of removed log entries.
	DeleteBySettlement(ctx context.Context, settlementID id.ID) (int, error)

	// DeleteByPayment removes every transaction tagged with the
	// appointment payment id from the flat log and from all registers.
	DeleteByPayment(ctx context.Context, paymentID id.ID) (int, error)
}

// TransactionFilter narrows flat-log queries.
type TransactionFilter struct {
	Owner          *OwnerKey
	Type           *TransactionType
	Method         *PaymentMethod
	ProfessionalID *id.ID
	SettlementID   *id.ID
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
