package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/ledger"
)

const (
	registersTable     = "cash_registers"
	transactionsTable  = "cash_transactions"
	registerLinesTable = "cash_register_lines"
)

var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
//
// The flat log lives in cash_transactions; each register's embedded copy is
// the join through cash_register_lines. Lines cascade on transaction delete,
// so removing a log entry removes it from its register in the same statement.
type LedgerRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// registerRow is the table shape of a cash register.
type registerRow struct {
	OwnerType      string       `db:"owner_type"`
	ProfessionalID id.ID        `db:"professional_id"`
	Status         string       `db:"status"`
	OpeningBalance types.Money  `db:"opening_balance"`
	FixedFund      types.Money  `db:"fixed_fund"`
	ClosingBalance *types.Money `db:"closing_balance"`
	OpenedAt       time.Time    `db:"opened_at"`
	ClosedAt       *time.Time   `db:"closed_at"`
}

func (row *registerRow) toRegister() *ledger.CashRegister {
	return &ledger.CashRegister{
		Owner: ledger.OwnerKey{
			Type:           ledger.RegisterType(row.OwnerType),
			ProfessionalID: row.ProfessionalID,
		},
		Status:         ledger.RegisterStatus(row.Status),
		OpeningBalance: row.OpeningBalance,
		FixedFund:      row.FixedFund,
		ClosingBalance: row.ClosingBalance,
		OpenedAt:       row.OpenedAt,
		ClosedAt:       row.ClosedAt,
	}
}

var transactionColumns = []string{
	"id", "date", "type", "amount", "method",
	"register_type", "professional_id",
	"appointment_id", "payment_id", "client_id", "settlement_id",
	"notes", "created_at",
}

func transactionValues(t ledger.Transaction) []any {
	return []any{
		t.ID, t.Date, t.Type, t.Amount, t.Method,
		t.RegisterType, t.ProfessionalID,
		t.AppointmentID, t.PaymentID, t.ClientID, t.SettlementID,
		t.Notes, t.CreatedAt,
	}
}

// GetRegister returns the register for an owner with its embedded movements.
func (r *LedgerRepo) GetRegister(ctx context.Context, owner ledger.OwnerKey) (*ledger.CashRegister, error) {
	q := r.builder.Select(
		"owner_type", "professional_id", "status",
		"opening_balance", "fixed_fund", "closing_balance",
		"opened_at", "closed_at",
	).From(registersTable).
		Where(squirrel.Eq{
			"owner_type":      owner.Type,
			"professional_id": owner.ProfessionalID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var row registerRow
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("cash register", owner.String())
		}
		return nil, fmt.Errorf("get register: %w", err)
	}

	reg := row.toRegister()
	reg.Transactions, err = r.loadRegisterLines(ctx, owner)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *LedgerRepo) loadRegisterLines(ctx context.Context, owner ledger.OwnerKey) ([]ledger.Transaction, error) {
	q := r.builder.Select(prefixColumns("t", transactionColumns)...).
		From(transactionsTable + " t").
		Join(registerLinesTable + " l ON l.transaction_id = t.id").
		Where(squirrel.Eq{
			"l.owner_type":      owner.Type,
			"l.professional_id": owner.ProfessionalID,
		}).
		OrderBy("l.position")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	txs := make([]ledger.Transaction, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &txs, sql, args...); err != nil {
		return nil, fmt.Errorf("select register lines: %w", err)
	}
	return txs, nil
}

func prefixColumns(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

// SaveRegister upserts the register row and rewrites its line set to match
// the embedded movement slice.
func (r *LedgerRepo) SaveRegister(ctx context.Context, reg *ledger.CashRegister) error {
	q := r.builder.Insert(registersTable).Columns(
		"owner_type", "professional_id", "status",
		"opening_balance", "fixed_fund", "closing_balance",
		"opened_at", "closed_at",
	).Values(
		reg.Owner.Type, reg.Owner.ProfessionalID, reg.Status,
		reg.OpeningBalance, reg.FixedFund, reg.ClosingBalance,
		reg.OpenedAt, reg.ClosedAt,
	).Suffix(`ON CONFLICT (owner_type, professional_id) DO UPDATE SET
		status = EXCLUDED.status,
		opening_balance = EXCLUDED.opening_balance,
		fixed_fund = EXCLUDED.fixed_fund,
		closing_balance = EXCLUDED.closing_balance,
		opened_at = EXCLUDED.opened_at,
		closed_at = EXCLUDED.closed_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert register: %w", err)
	}

	return r.rewriteRegisterLines(ctx, reg)
}

func (r *LedgerRepo) rewriteRegisterLines(ctx context.Context, reg *ledger.CashRegister) error {
	del := r.builder.Delete(registerLinesTable).
		Where(squirrel.Eq{
			"owner_type":      reg.Owner.Type,
			"professional_id": reg.Owner.ProfessionalID,
		})

	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete register lines: %w", err)
	}

	if len(reg.Transactions) == 0 {
		return nil
	}

	ins := r.builder.Insert(registerLinesTable).
		Columns("owner_type", "professional_id", "transaction_id")
	for _, t := range reg.Transactions {
		ins = ins.Values(reg.Owner.Type, reg.Owner.ProfessionalID, t.ID)
	}

	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert register lines: %w", err)
	}
	return nil
}

// ListRegisters returns every provisioned register with movements loaded.
func (r *LedgerRepo) ListRegisters(ctx context.Context) ([]*ledger.CashRegister, error) {
	q := r.builder.Select(
		"owner_type", "professional_id", "status",
		"opening_balance", "fixed_fund", "closing_balance",
		"opened_at", "closed_at",
	).From(registersTable).
		OrderBy("owner_type", "professional_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []registerRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select registers: %w", err)
	}

	out := make([]*ledger.CashRegister, 0, len(rows))
	for i := range rows {
		reg := rows[i].toRegister()
		reg.Transactions, err = r.loadRegisterLines(ctx, reg.Owner)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, nil
}

// AppendTransaction adds tx to the flat log and its owner's line set.
// The register must already be provisioned.
func (r *LedgerRepo) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	owner := tx.Owner()
	exists, err := r.registerExists(ctx, owner)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("cash register", owner.String())
	}

	ins := r.builder.Insert(transactionsTable).
		Columns(transactionColumns...).
		Values(transactionValues(tx)...)

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	line := r.builder.Insert(registerLinesTable).
		Columns("owner_type", "professional_id", "transaction_id").
		Values(owner.Type, owner.ProfessionalID, tx.ID)

	sql, args, err = line.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert register line: %w", err)
	}
	return nil
}

func (r *LedgerRepo) registerExists(ctx context.Context, owner ledger.OwnerKey) (bool, error) {
	q := r.builder.Select("1").From(registersTable).
		Where(squirrel.Eq{
			"owner_type":      owner.Type,
			"professional_id": owner.ProfessionalID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &one, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check register: %w", err)
	}
	return true, nil
}

// ListTransactions returns flat-log entries matching the filter.
func (r *LedgerRepo) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	q := r.builder.Select(transactionColumns...).
		From(transactionsTable).
		OrderBy("date", "created_at")

	if filter.Owner != nil {
		q = q.Where(squirrel.Eq{
			"register_type":   filter.Owner.Type,
			"professional_id": filter.Owner.ProfessionalID,
		})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Method != nil {
		q = q.Where(squirrel.Eq{"method": *filter.Method})
	}
	if filter.ProfessionalID != nil {
		q = q.Where(squirrel.Eq{"professional_id": *filter.ProfessionalID})
	}
	if filter.SettlementID != nil {
		q = q.Where(squirrel.Eq{"settlement_id": *filter.SettlementID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"date": *filter.To})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	txs := make([]ledger.Transaction, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &txs, sql, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return txs, nil
}

// DeleteBySettlement removes transactions tagged with the settlement id.
func (r *LedgerRepo) DeleteBySettlement(ctx context.Context, settlementID id.ID) (int, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"settlement_id": settlementID})
}

// DeleteByPayment removes transactions tagged with the payment id.
func (r *LedgerRepo) DeleteByPayment(ctx context.Context, paymentID id.ID) (int, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"payment_id": paymentID})
}

func (r *LedgerRepo) deleteWhere(ctx context.Context, pred squirrel.Eq) (int, error) {
	q := r.builder.Delete(transactionsTable).Where(pred)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
