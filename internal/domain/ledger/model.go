// Package ledger provides the cash movement log and per-owner register views.
// Transactions are immutable once posted: flows that need to undo one replace
// or remove the whole object, never edit it in place.
package ledger

import (
	"fmt"
	"time"

	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
)

// RegisterType identifies the owner class of a cash register.
type RegisterType string

const (
	RegisterReception     RegisterType = "reception"
	RegisterAdministrator RegisterType = "administrator"
	RegisterProfessional  RegisterType = "professional"
)

// RegisterStatus is the open/closed lifecycle state of a register.
type RegisterStatus string

const (
	StatusOpen   RegisterStatus = "open"
	StatusClosed RegisterStatus = "closed"
)

// TransactionType is the fixed enumeration of cash movement kinds.
type TransactionType string

const (
	TypeSessionPayment         TransactionType = "session_payment"
	TypeDepositPayment         TransactionType = "deposit_payment"
	TypeProfessionalWithdrawal TransactionType = "professional_withdrawal"
	TypeProductSale            TransactionType = "product_sale"
	TypeSettlementTransfer     TransactionType = "settlement_transfer"
	TypeMonthlyExcessTransfer  TransactionType = "monthly_excess_transfer"
	TypeCashTransfer           TransactionType = "cash_transfer"
	TypeAdjustment             TransactionType = "adjustment"
	TypeExpense                TransactionType = "expense"
	TypeCashFund               TransactionType = "cash_fund"
)

// PaymentMethod distinguishes physical cash from bank transfers.
// Transfers never pass through a clinic register; they flow straight to the
// receiving professional.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
)

// OwnerKey identifies exactly one register: the front desk, the clinic
// administrator, or one specific professional. Keeping registers in a map
// keyed by OwnerKey makes the one-register-per-owner rule structural.
type OwnerKey struct {
	Type           RegisterType
	ProfessionalID id.ID // zero unless Type == RegisterProfessional
}

// ReceptionOwner returns the front-desk register key.
func ReceptionOwner() OwnerKey {
	return OwnerKey{Type: RegisterReception}
}

// AdministratorOwner returns the administrator register key.
func AdministratorOwner() OwnerKey {
	return OwnerKey{Type: RegisterAdministrator}
}

// ProfessionalOwner returns the register key for one professional.
func ProfessionalOwner(professionalID id.ID) OwnerKey {
	return OwnerKey{Type: RegisterProfessional, ProfessionalID: professionalID}
}

// String renders the key for logs and error details.
func (k OwnerKey) String() string {
	if k.Type == RegisterProfessional {
		return fmt.Sprintf("professional:%s", k.ProfessionalID)
	}
	return string(k.Type)
}

// Transaction is a single signed cash movement. Negative amounts are outflows
// from the owning register.
type Transaction struct {
	ID     id.ID           `db:"id" json:"id"`
	Date   time.Time       `db:"date" json:"date"`
	Type   TransactionType `db:"type" json:"type"`
	Amount types.Money     `db:"amount" json:"amount"`
	Method PaymentMethod   `db:"method" json:"method"`

	// Register resolution: RegisterType plus ProfessionalID when the type
	// is professional. Exactly one register owns each transaction.
	RegisterType   RegisterType `db:"register_type" json:"registerType"`
	ProfessionalID id.ID        `db:"professional_id" json:"professionalId,omitempty"`

	// Optional references back to the originating flow.
	AppointmentID id.ID `db:"appointment_id" json:"appointmentId,omitempty"`
	PaymentID     id.ID `db:"payment_id" json:"paymentId,omitempty"`
	ClientID      id.ID `db:"client_id" json:"clientId,omitempty"`
	SettlementID  id.ID `db:"settlement_id" json:"settlementId,omitempty"`

	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Owner returns the key of the register this transaction belongs to.
func (t *Transaction) Owner() OwnerKey {
	if t.RegisterType == RegisterProfessional {
		return ProfessionalOwner(t.ProfessionalID)
	}
	return OwnerKey{Type: t.RegisterType}
}

// CashRegister is the running balance view for one owner. The register embeds
// its own copy of posted transactions; the flat log in the repository is the
// system-wide view over the same movements.
type CashRegister struct {
	Owner          OwnerKey       `json:"owner"`
	OpeningBalance types.Money    `json:"openingBalance"`
	Status         RegisterStatus `json:"status"`

	// FixedFund is the cash float the reception register keeps across the
	// monthly close. Unused for other owners.
	FixedFund types.Money `json:"fixedFund,omitempty"`

	// ClosingBalance is frozen when a reception or administrator register
	// closes. Professional registers close at zero after the withdrawal.
	ClosingBalance *types.Money `json:"closingBalance,omitempty"`

	OpenedAt time.Time  `json:"openedAt"`
	ClosedAt *time.Time `json:"closedAt,omitempty"`

	Transactions []Transaction `json:"transactions"`
}

// NewRegister provisions a register for an owner. Registers are created once
// and never deleted; open/close transitions reset their movement slice.
func NewRegister(owner OwnerKey) *CashRegister {
	return &CashRegister{
		Owner:          owner,
		OpeningBalance: types.Zero(),
		FixedFund:      types.Zero(),
		Status:         StatusClosed,
		Transactions:   make([]Transaction, 0),
	}
}

// Balance folds the register: openingBalance + sum of transaction amounts.
func (r *CashRegister) Balance() types.Money {
	total := r.OpeningBalance
	for _, t := range r.Transactions {
		total = total.Add(t.Amount)
	}
	return total
}

// Open resets the register for a new session. Opening an already-open
// register overwrites it; callers that care must check Status first.
func (r *CashRegister) Open(openingBalance types.Money) {
	r.OpeningBalance = openingBalance
	r.Status = StatusOpen
	r.ClosingBalance = nil
	r.OpenedAt = time.Now().UTC()
	r.ClosedAt = nil
	r.Transactions = r.Transactions[:0]
}

// Append adds a posted transaction to the register's embedded copy.
func (r *CashRegister) Append(t Transaction) {
	r.Transactions = append(r.Transactions, t)
}

// RemoveWhere drops embedded transactions matching the predicate and returns
// how many were removed.
func (r *CashRegister) RemoveWhere(match func(Transaction) bool) int {
	kept := r.Transactions[:0]
	removed := 0
	for _, t := range r.Transactions {
		if match(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.Transactions = kept
	return removed
}
