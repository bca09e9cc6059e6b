package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/adjustment"
)

const (
	adjustmentsTable     = "adjustments"
	adjustmentTasksTable = "adjustment_tasks"
)

var _ adjustment.Repository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implements adjustment.Repository.
type AdjustmentRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewAdjustmentRepo creates a new adjustment repository.
func NewAdjustmentRepo(txManager *TxManager) *AdjustmentRepo {
	return &AdjustmentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var adjustmentColumns = []string{
	"id", "appointment_id",
	"from_professional_id", "to_professional_id",
	"amount", "mode", "state", "auto_resolved",
	"source_payment_ids",
	"notes", "evidence_url",
	"due_date", "created_at", "resolved_at",
}

// adjustmentRow adds the uuid-array column to the entity shape.
type adjustmentRow struct {
	adjustment.Adjustment
	SourcePaymentIDs []id.ID `db:"source_payment_ids"`
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *adjustment.Adjustment) error {
	q := r.builder.Insert(adjustmentsTable).
		Columns(adjustmentColumns...).
		Values(
			adj.ID, adj.AppointmentID,
			adj.FromProfessionalID, adj.ToProfessionalID,
			adj.Amount, adj.Mode, adj.State, adj.AutoResolved,
			adj.SourcePaymentIDs,
			adj.Notes, adj.EvidenceURL,
			adj.DueDate, adj.CreatedAt, adj.ResolvedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return nil
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, adjID id.ID) (*adjustment.Adjustment, error) {
	q := r.builder.Select(adjustmentColumns...).
		From(adjustmentsTable).
		Where(squirrel.Eq{"id": adjID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row adjustmentRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("adjustment", adjID)
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}

	adj := row.Adjustment
	adj.SourcePaymentIDs = row.SourcePaymentIDs
	return &adj, nil
}

func (r *AdjustmentRepo) Update(ctx context.Context, adj *adjustment.Adjustment) error {
	q := r.builder.Update(adjustmentsTable).
		Set("state", adj.State).
		Set("evidence_url", adj.EvidenceURL).
		Set("notes", adj.Notes).
		Set("resolved_at", adj.ResolvedAt).
		Where(squirrel.Eq{"id": adj.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update adjustment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("adjustment", adj.ID)
	}
	return nil
}

func (r *AdjustmentRepo) ListByAppointment(ctx context.Context, apptID id.ID) ([]*adjustment.Adjustment, error) {
	return r.list(ctx, squirrel.Eq{"appointment_id": apptID})
}

func (r *AdjustmentRepo) ListPending(ctx context.Context) ([]*adjustment.Adjustment, error) {
	return r.list(ctx, squirrel.NotEq{"state": adjustment.StateResolved})
}

func (r *AdjustmentRepo) list(ctx context.Context, pred any) ([]*adjustment.Adjustment, error) {
	q := r.builder.Select(adjustmentColumns...).
		From(adjustmentsTable).
		Where(pred).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []adjustmentRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select adjustments: %w", err)
	}

	out := make([]*adjustment.Adjustment, 0, len(rows))
	for i := range rows {
		adj := rows[i].Adjustment
		adj.SourcePaymentIDs = rows[i].SourcePaymentIDs
		out = append(out, &adj)
	}
	return out, nil
}

var taskColumns = []string{
	"id", "adjustment_id", "assigned_to", "title",
	"due_date", "done", "completed_at", "created_at",
}

func (r *AdjustmentRepo) CreateTask(ctx context.Context, task *adjustment.Task) error {
	q := r.builder.Insert(adjustmentTasksTable).
		Columns(taskColumns...).
		Values(
			task.ID, task.AdjustmentID, task.AssignedTo, task.Title,
			task.DueDate, task.Done, task.CompletedAt, task.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *AdjustmentRepo) GetTaskByAdjustment(ctx context.Context, adjID id.ID) (*adjustment.Task, error) {
	q := r.builder.Select(taskColumns...).
		From(adjustmentTasksTable).
		Where(squirrel.Eq{"adjustment_id": adjID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var task adjustment.Task
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &task, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("task", adjID)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (r *AdjustmentRepo) UpdateTask(ctx context.Context, task *adjustment.Task) error {
	q := r.builder.Update(adjustmentTasksTable).
		Set("done", task.Done).
		Set("completed_at", task.CompletedAt).
		Where(squirrel.Eq{"id": task.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("task", task.ID)
	}
	return nil
}
