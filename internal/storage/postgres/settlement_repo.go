package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/settlement"
)

const (
	dailySettlementsTable   = "settlements_daily"
	monthlySettlementsTable = "settlements_monthly"
	settlementPaymentsTable = "settlement_payments"
)

var _ settlement.Repository = (*SettlementRepo)(nil)

// SettlementRepo implements settlement.Repository. The two variants live in
// separate tables with a shared payments table keyed by settlement id.
type SettlementRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewSettlementRepo creates a new settlement repository.
func NewSettlementRepo(txManager *TxManager) *SettlementRepo {
	return &SettlementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var settlementBaseColumns = []string{
	"id", "professional_id", "status",
	"attended_count", "no_show_count",
	"base_revenue", "total_billed", "discount_amount",
	"professional_earnings", "clinic_commission", "total_clinic_commission",
	"no_show_deposits_lost",
	"cash_collected", "transfer_collected",
	"amount_to_settle",
	"generated_at", "confirmed_at",
}

func settlementBaseValues(b *settlement.Base) []any {
	return []any{
		b.ID, b.ProfessionalID, b.Status,
		b.AttendedCount, b.NoShowCount,
		b.BaseRevenue, b.TotalBilled, b.DiscountAmount,
		b.ProfessionalEarnings, b.ClinicCommission, b.TotalClinicCommission,
		b.NoShowDepositsLost,
		b.CashCollected, b.TransferCollected,
		b.AmountToSettle,
		b.GeneratedAt, b.ConfirmedAt,
	}
}

func (r *SettlementRepo) CreateDaily(ctx context.Context, s *settlement.Daily) error {
	cols := append(append([]string{}, settlementBaseColumns...), "date")
	vals := append(settlementBaseValues(&s.Base), s.Date)

	q := r.builder.Insert(dailySettlementsTable).Columns(cols...).Values(vals...)
	if err := r.exec(ctx, q, "insert daily settlement"); err != nil {
		return err
	}
	return r.rewritePayments(ctx, s.ID, s.Payments)
}

func (r *SettlementRepo) CreateMonthly(ctx context.Context, s *settlement.Monthly) error {
	cols := append(append([]string{}, settlementBaseColumns...),
		"month", "year", "professional_earnings_no_show", "total_professional_earnings")
	vals := append(settlementBaseValues(&s.Base),
		int(s.Month), s.Year, s.ProfessionalEarningsNoShow, s.TotalProfessionalEarnings)

	q := r.builder.Insert(monthlySettlementsTable).Columns(cols...).Values(vals...)
	if err := r.exec(ctx, q, "insert monthly settlement"); err != nil {
		return err
	}
	return r.rewritePayments(ctx, s.ID, s.Payments)
}

// Get resolves either variant by id.
func (r *SettlementRepo) Get(ctx context.Context, settlementID id.ID) (settlement.Settlement, error) {
	daily, err := r.getDaily(ctx, squirrel.Eq{"id": settlementID})
	if err == nil {
		return daily, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	monthly, err := r.getMonthly(ctx, squirrel.Eq{"id": settlementID})
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("settlement", settlementID)
		}
		return nil, err
	}
	return monthly, nil
}

func (r *SettlementRepo) getDaily(ctx context.Context, pred any) (*settlement.Daily, error) {
	cols := append(append([]string{}, settlementBaseColumns...), "date")
	q := r.builder.Select(cols...).From(dailySettlementsTable).Where(pred).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s settlement.Daily
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("daily settlement", pred)
		}
		return nil, fmt.Errorf("get daily settlement: %w", err)
	}

	if s.Payments, err = r.loadPayments(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettlementRepo) getMonthly(ctx context.Context, pred any) (*settlement.Monthly, error) {
	cols := append(append([]string{}, settlementBaseColumns...),
		"month", "year", "professional_earnings_no_show", "total_professional_earnings")
	q := r.builder.Select(cols...).From(monthlySettlementsTable).Where(pred).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s settlement.Monthly
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("monthly settlement", pred)
		}
		return nil, fmt.Errorf("get monthly settlement: %w", err)
	}

	if s.Payments, err = r.loadPayments(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update persists status, confirmation timestamp and payments of either variant.
func (r *SettlementRepo) Update(ctx context.Context, s settlement.Settlement) error {
	base := s.GetBase()

	var table string
	switch s.GetKind() {
	case settlement.KindDaily:
		table = dailySettlementsTable
	case settlement.KindMonthly:
		table = monthlySettlementsTable
	default:
		return apperror.NewInternal(fmt.Errorf("unknown settlement kind %q", s.GetKind()))
	}

	q := r.builder.Update(table).
		Set("status", base.Status).
		Set("confirmed_at", base.ConfirmedAt).
		Where(squirrel.Eq{"id": base.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("settlement", base.ID)
	}

	return r.rewritePayments(ctx, base.ID, base.Payments)
}

// Delete removes the settlement and its recorded payments.
func (r *SettlementRepo) Delete(ctx context.Context, settlementID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	for _, table := range []string{dailySettlementsTable, monthlySettlementsTable} {
		q := r.builder.Delete(table).Where(squirrel.Eq{"id": settlementID})
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("delete settlement: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return r.deletePayments(ctx, settlementID)
		}
	}
	return apperror.NewNotFound("settlement", settlementID)
}

// FindDaily returns the daily settlement for professional+date.
func (r *SettlementRepo) FindDaily(ctx context.Context, professionalID id.ID, date time.Time) (*settlement.Daily, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return r.getDaily(ctx, squirrel.Eq{
		"professional_id": professionalID,
		"date":            day,
	})
}

// FindMonthly returns the monthly settlement for professional+month+year.
func (r *SettlementRepo) FindMonthly(ctx context.Context, professionalID id.ID, month time.Month, year int) (*settlement.Monthly, error) {
	return r.getMonthly(ctx, squirrel.Eq{
		"professional_id": professionalID,
		"month":           int(month),
		"year":            year,
	})
}

// ListByProfessional returns every settlement for a professional, newest first.
func (r *SettlementRepo) ListByProfessional(ctx context.Context, professionalID id.ID) ([]settlement.Settlement, error) {
	out := make([]settlement.Settlement, 0)

	dailyCols := append(append([]string{}, settlementBaseColumns...), "date")
	q := r.builder.Select(dailyCols...).From(dailySettlementsTable).
		Where(squirrel.Eq{"professional_id": professionalID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var dailies []*settlement.Daily
	if err := pgxscan.Select(ctx, querier, &dailies, sql, args...); err != nil {
		return nil, fmt.Errorf("select daily settlements: %w", err)
	}

	monthlyCols := append(append([]string{}, settlementBaseColumns...),
		"month", "year", "professional_earnings_no_show", "total_professional_earnings")
	q = r.builder.Select(monthlyCols...).From(monthlySettlementsTable).
		Where(squirrel.Eq{"professional_id": professionalID})

	sql, args, err = q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var monthlies []*settlement.Monthly
	if err := pgxscan.Select(ctx, querier, &monthlies, sql, args...); err != nil {
		return nil, fmt.Errorf("select monthly settlements: %w", err)
	}

	for _, d := range dailies {
		if d.Payments, err = r.loadPayments(ctx, d.ID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	for _, m := range monthlies {
		if m.Payments, err = r.loadPayments(ctx, m.ID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	sortSettlementsByGeneratedAt(out)
	return out, nil
}

func sortSettlementsByGeneratedAt(ss []settlement.Settlement) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j].GetBase().GeneratedAt.After(ss[j-1].GetBase().GeneratedAt); j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}

func (r *SettlementRepo) loadPayments(ctx context.Context, settlementID id.ID) ([]settlement.Payment, error) {
	q := r.builder.Select("id", "amount", "method", "paid_at", "notes").
		From(settlementPaymentsTable).
		Where(squirrel.Eq{"settlement_id": settlementID}).
		OrderBy("paid_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	payments := make([]settlement.Payment, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select settlement payments: %w", err)
	}
	return payments, nil
}

func (r *SettlementRepo) rewritePayments(ctx context.Context, settlementID id.ID, payments []settlement.Payment) error {
	if err := r.deletePayments(ctx, settlementID); err != nil {
		return err
	}
	if len(payments) == 0 {
		return nil
	}

	ins := r.builder.Insert(settlementPaymentsTable).
		Columns("id", "settlement_id", "amount", "method", "paid_at", "notes")
	for _, p := range payments {
		ins = ins.Values(p.ID, settlementID, p.Amount, p.Method, p.PaidAt, p.Notes)
	}
	return r.exec(ctx, ins, "insert settlement payments")
}

func (r *SettlementRepo) deletePayments(ctx context.Context, settlementID id.ID) error {
	q := r.builder.Delete(settlementPaymentsTable).
		Where(squirrel.Eq{"settlement_id": settlementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete settlement payments: %w", err)
	}
	return nil
}

func (r *SettlementRepo) exec(ctx context.Context, q squirrel.Sqlizer, op string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
