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
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
)

const (
	professionalsTable = "cat_professionals"
	treatmentsTable    = "cat_treatments"
)

var (
	_ professional.Repository = (*ProfessionalRepo)(nil)
	_ treatment.Repository    = (*TreatmentRepo)(nil)
)

// ProfessionalRepo implements professional.Repository.
type ProfessionalRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewProfessionalRepo creates a new professional catalog repository.
func NewProfessionalRepo(txManager *TxManager) *ProfessionalRepo {
	return &ProfessionalRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var professionalColumns = []string{
	"id", "name", "commission_rate", "cash_in_hand", "active", "created_at", "updated_at",
}

func (r *ProfessionalRepo) Create(ctx context.Context, p *professional.Professional) error {
	q := r.builder.Insert(professionalsTable).
		Columns(professionalColumns...).
		Values(p.ID, p.Name, p.CommissionRate, p.CashInHand, p.Active, p.CreatedAt, p.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert professional: %w", err)
	}
	return nil
}

func (r *ProfessionalRepo) GetByID(ctx context.Context, professionalID id.ID) (*professional.Professional, error) {
	q := r.builder.Select(professionalColumns...).
		From(professionalsTable).
		Where(squirrel.Eq{"id": professionalID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p professional.Professional
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("professional", professionalID)
		}
		return nil, fmt.Errorf("get professional: %w", err)
	}
	return &p, nil
}

func (r *ProfessionalRepo) Update(ctx context.Context, p *professional.Professional) error {
	q := r.builder.Update(professionalsTable).
		Set("name", p.Name).
		Set("commission_rate", p.CommissionRate).
		Set("cash_in_hand", p.CashInHand).
		Set("active", p.Active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update professional: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("professional", p.ID)
	}
	return nil
}

func (r *ProfessionalRepo) List(ctx context.Context) ([]*professional.Professional, error) {
	q := r.builder.Select(professionalColumns...).
		From(professionalsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]*professional.Professional, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select professionals: %w", err)
	}
	return out, nil
}

// CreditCashInHand adds amount to the professional's cash-in-hand accumulator
// in a single statement, safe under concurrent register closes.
func (r *ProfessionalRepo) CreditCashInHand(ctx context.Context, professionalID id.ID, amount types.Money) error {
	q := r.builder.Update(professionalsTable).
		Set("cash_in_hand", squirrel.Expr("cash_in_hand + ?", amount)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": professionalID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("credit cash in hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("professional", professionalID)
	}
	return nil
}

// TreatmentRepo implements treatment.Repository.
type TreatmentRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewTreatmentRepo creates a new treatment catalog repository.
func NewTreatmentRepo(txManager *TxManager) *TreatmentRepo {
	return &TreatmentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var treatmentColumns = []string{
	"id", "name", "base_price", "deposit_percent", "max_deposit", "active", "created_at", "updated_at",
}

func (r *TreatmentRepo) Create(ctx context.Context, t *treatment.Treatment) error {
	q := r.builder.Insert(treatmentsTable).
		Columns(treatmentColumns...).
		Values(t.ID, t.Name, t.BasePrice, t.DepositPercent, t.MaxDeposit, t.Active, t.CreatedAt, t.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert treatment: %w", err)
	}
	return nil
}

func (r *TreatmentRepo) GetByID(ctx context.Context, treatmentID id.ID) (*treatment.Treatment, error) {
	q := r.builder.Select(treatmentColumns...).
		From(treatmentsTable).
		Where(squirrel.Eq{"id": treatmentID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t treatment.Treatment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("treatment", treatmentID)
		}
		return nil, fmt.Errorf("get treatment: %w", err)
	}
	return &t, nil
}

func (r *TreatmentRepo) Update(ctx context.Context, t *treatment.Treatment) error {
	q := r.builder.Update(treatmentsTable).
		Set("name", t.Name).
		Set("base_price", t.BasePrice).
		Set("deposit_percent", t.DepositPercent).
		Set("max_deposit", t.MaxDeposit).
		Set("active", t.Active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update treatment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("treatment", t.ID)
	}
	return nil
}

func (r *TreatmentRepo) List(ctx context.Context) ([]*treatment.Treatment, error) {
	q := r.builder.Select(treatmentColumns...).
		From(treatmentsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]*treatment.Treatment, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select treatments: %w", err)
	}
	return out, nil
}
