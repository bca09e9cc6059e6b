package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/appointment"
)

const (
	appointmentsTable = "appointments"
	apptPaymentsTable = "appointment_payments"
)

var _ appointment.Repository = (*AppointmentRepo)(nil)

// AppointmentRepo implements appointment.Repository.
type AppointmentRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewAppointmentRepo creates a new appointment repository.
func NewAppointmentRepo(txManager *TxManager) *AppointmentRepo {
	return &AppointmentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var appointmentColumns = []string{
	"id", "client_id", "professional_id", "treatment_id",
	"date", "status",
	"base_price", "discount_percent", "final_price", "recommended_deposit",
	"paid_amount", "cash_collected", "transfer_collected", "deposit_amount",
	"is_paid", "is_deposit_complete",
	"payment_resolution_status",
	"created_at", "updated_at",
}

func appointmentValues(a *appointment.Appointment) []any {
	return []any{
		a.ID, a.ClientID, a.ProfessionalID, a.TreatmentID,
		a.Date, a.Status,
		a.BasePrice, a.DiscountPercent, a.FinalPrice, a.RecommendedDeposit,
		a.PaidAmount, a.CashCollected, a.TransferCollected, a.DepositAmount,
		a.IsPaid, a.IsDepositComplete,
		a.PaymentResolutionStatus,
		a.CreatedAt, a.UpdatedAt,
	}
}

// Create inserts the appointment and its payments.
func (r *AppointmentRepo) Create(ctx context.Context, appt *appointment.Appointment) error {
	q := r.builder.Insert(appointmentsTable).
		Columns(appointmentColumns...).
		Values(appointmentValues(appt)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return r.rewritePayments(ctx, appt)
}

// GetByID returns the appointment with its payments loaded.
func (r *AppointmentRepo) GetByID(ctx context.Context, apptID id.ID) (*appointment.Appointment, error) {
	q := r.builder.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(squirrel.Eq{"id": apptID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var appt appointment.Appointment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &appt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("appointment", apptID)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	if err := r.loadPayments(ctx, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Update rewrites the appointment row and replaces its payment set, so
// aggregates and the backing entries always land together.
func (r *AppointmentRepo) Update(ctx context.Context, appt *appointment.Appointment) error {
	q := r.builder.Update(appointmentsTable).
		Set("client_id", appt.ClientID).
		Set("professional_id", appt.ProfessionalID).
		Set("treatment_id", appt.TreatmentID).
		Set("date", appt.Date).
		Set("status", appt.Status).
		Set("base_price", appt.BasePrice).
		Set("discount_percent", appt.DiscountPercent).
		Set("final_price", appt.FinalPrice).
		Set("recommended_deposit", appt.RecommendedDeposit).
		Set("paid_amount", appt.PaidAmount).
		Set("cash_collected", appt.CashCollected).
		Set("transfer_collected", appt.TransferCollected).
		Set("deposit_amount", appt.DepositAmount).
		Set("is_paid", appt.IsPaid).
		Set("is_deposit_complete", appt.IsDepositComplete).
		Set("payment_resolution_status", appt.PaymentResolutionStatus).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": appt.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("appointment", appt.ID)
	}

	return r.rewritePayments(ctx, appt)
}

func (r *AppointmentRepo) rewritePayments(ctx context.Context, appt *appointment.Appointment) error {
	del := r.builder.Delete(apptPaymentsTable).
		Where(squirrel.Eq{"appointment_id": appt.ID})

	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}

	if len(appt.Payments) == 0 {
		return nil
	}

	ins := r.builder.Insert(apptPaymentsTable).Columns(
		"id", "appointment_id", "amount", "method",
		"received_by", "is_deposit", "payment_date", "notes",
	)
	for _, p := range appt.Payments {
		ins = ins.Values(p.ID, appt.ID, p.Amount, p.Method, p.ReceivedBy, p.IsDeposit, p.PaymentDate, p.Notes)
	}

	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payments: %w", err)
	}
	return nil
}

func (r *AppointmentRepo) loadPayments(ctx context.Context, appt *appointment.Appointment) error {
	q := r.builder.Select(
		"id", "amount", "method",
		"received_by", "is_deposit", "payment_date", "notes",
	).From(apptPaymentsTable).
		Where(squirrel.Eq{"appointment_id": appt.ID}).
		OrderBy("payment_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	payments := make([]appointment.Payment, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return fmt.Errorf("select payments: %w", err)
	}
	appt.Payments = payments
	return nil
}

// List returns appointments matching the filter, payments loaded.
func (r *AppointmentRepo) List(ctx context.Context, filter appointment.ListFilter) ([]*appointment.Appointment, error) {
	q := r.builder.Select(appointmentColumns...).
		From(appointmentsTable).
		OrderBy("date")

	if filter.ProfessionalID != nil {
		q = q.Where(squirrel.Eq{"professional_id": *filter.ProfessionalID})
	}
	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
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

	return r.selectAppointments(ctx, q)
}

// ListForSettlement returns appointments assigned to the professional in
// [from, to) plus any carrying a payment the professional received in that
// range.
func (r *AppointmentRepo) ListForSettlement(ctx context.Context, professionalID id.ID, from, to time.Time) ([]*appointment.Appointment, error) {
	q := r.builder.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"professional_id": professionalID},
				squirrel.GtOrEq{"date": from},
				squirrel.Lt{"date": to},
			},
			squirrel.Expr(
				`id IN (SELECT appointment_id FROM `+apptPaymentsTable+
					` WHERE received_by = ? AND payment_date >= ? AND payment_date < ?)`,
				professionalID, from, to,
			),
		}).
		OrderBy("date")

	return r.selectAppointments(ctx, q)
}

func (r *AppointmentRepo) selectAppointments(ctx context.Context, q squirrel.SelectBuilder) ([]*appointment.Appointment, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	appts := make([]*appointment.Appointment, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &appts, sql, args...); err != nil {
		return nil, fmt.Errorf("select appointments: %w", err)
	}

	for _, appt := range appts {
		if err := r.loadPayments(ctx, appt); err != nil {
			return nil, err
		}
	}
	return appts, nil
}
