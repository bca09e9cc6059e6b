package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicash/internal/core/apperror"
	"clinicash/internal/domain/reception"
)

const (
	dailyClosesTable   = "reception_daily_closes"
	monthlyClosesTable = "reception_monthly_closes"
)

var _ reception.Repository = (*ReceptionRepo)(nil)

// ReceptionRepo implements reception.Repository. Unique indexes on the close
// period back the once-per-period rule.
type ReceptionRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewReceptionRepo creates a new reception close repository.
func NewReceptionRepo(txManager *TxManager) *ReceptionRepo {
	return &ReceptionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReceptionRepo) CreateDaily(ctx context.Context, c *reception.DailyClose) error {
	q := r.builder.Insert(dailyClosesTable).
		Columns("id", "date", "cash_sales", "transfer_sales", "operation_count", "closed_by", "created_at").
		Values(c.ID, truncateToDay(c.Date), c.CashSales, c.TransferSales, c.OperationCount, c.ClosedBy, c.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert daily close: %w", err)
	}
	return nil
}

func (r *ReceptionRepo) CreateMonthly(ctx context.Context, c *reception.MonthlyClose) error {
	q := r.builder.Insert(monthlyClosesTable).
		Columns("id", "month", "year", "balance_before", "fixed_fund", "excess", "closed_by", "created_at").
		Values(c.ID, int(c.Month), c.Year, c.BalanceBefore, c.FixedFund, c.Excess, c.ClosedBy, c.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert monthly close: %w", err)
	}
	return nil
}

func (r *ReceptionRepo) FindDailyByDate(ctx context.Context, date time.Time) (*reception.DailyClose, error) {
	q := r.builder.Select("id", "date", "cash_sales", "transfer_sales", "operation_count", "closed_by", "created_at").
		From(dailyClosesTable).
		Where(squirrel.Eq{"date": truncateToDay(date)}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c reception.DailyClose
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("daily close", date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get daily close: %w", err)
	}
	return &c, nil
}

func (r *ReceptionRepo) FindMonthly(ctx context.Context, month time.Month, year int) (*reception.MonthlyClose, error) {
	q := r.builder.Select("id", "month", "year", "balance_before", "fixed_fund", "excess", "closed_by", "created_at").
		From(monthlyClosesTable).
		Where(squirrel.Eq{"month": int(month), "year": year}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c reception.MonthlyClose
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("monthly close", fmt.Sprintf("%04d-%02d", year, month))
		}
		return nil, fmt.Errorf("get monthly close: %w", err)
	}
	return &c, nil
}

func (r *ReceptionRepo) ListDaily(ctx context.Context, limit int) ([]*reception.DailyClose, error) {
	q := r.builder.Select("id", "date", "cash_sales", "transfer_sales", "operation_count", "closed_by", "created_at").
		From(dailyClosesTable).
		OrderBy("date DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]*reception.DailyClose, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select daily closes: %w", err)
	}
	return out, nil
}

func (r *ReceptionRepo) ListMonthly(ctx context.Context, limit int) ([]*reception.MonthlyClose, error) {
	q := r.builder.Select("id", "month", "year", "balance_before", "fixed_fund", "excess", "closed_by", "created_at").
		From(monthlyClosesTable).
		OrderBy("year DESC", "month DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]*reception.MonthlyClose, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select monthly closes: %w", err)
	}
	return out, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
