package memory

import (
	"context"
	"sort"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/adjustment"
)

var _ adjustment.Repository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implements adjustment.Repository over the store.
type AdjustmentRepo struct {
	store *Store
}

func cloneAdjustment(a *adjustment.Adjustment) *adjustment.Adjustment {
	c := *a
	c.SourcePaymentIDs = append([]id.ID(nil), a.SourcePaymentIDs...)
	return &c
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *adjustment.Adjustment) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.adjustments[adj.ID]; exists {
		return apperror.NewConflict("adjustment already exists").WithDetail("id", adj.ID)
	}
	r.store.adjustments[adj.ID] = cloneAdjustment(adj)
	return nil
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, adjID id.ID) (*adjustment.Adjustment, error) {
	defer r.store.lock(ctx)()

	adj, ok := r.store.adjustments[adjID]
	if !ok {
		return nil, apperror.NewNotFound("adjustment", adjID)
	}
	return cloneAdjustment(adj), nil
}

func (r *AdjustmentRepo) Update(ctx context.Context, adj *adjustment.Adjustment) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.adjustments[adj.ID]; !ok {
		return apperror.NewNotFound("adjustment", adj.ID)
	}
	r.store.adjustments[adj.ID] = cloneAdjustment(adj)
	return nil
}

func (r *AdjustmentRepo) ListByAppointment(ctx context.Context, apptID id.ID) ([]*adjustment.Adjustment, error) {
	defer r.store.lock(ctx)()

	out := make([]*adjustment.Adjustment, 0)
	for _, a := range r.store.adjustments {
		if a.AppointmentID == apptID {
			out = append(out, cloneAdjustment(a))
		}
	}
	sortAdjustments(out)
	return out, nil
}

func (r *AdjustmentRepo) ListPending(ctx context.Context) ([]*adjustment.Adjustment, error) {
	defer r.store.lock(ctx)()

	out := make([]*adjustment.Adjustment, 0)
	for _, a := range r.store.adjustments {
		if a.State != adjustment.StateResolved {
			out = append(out, cloneAdjustment(a))
		}
	}
	sortAdjustments(out)
	return out, nil
}

func sortAdjustments(adjs []*adjustment.Adjustment) {
	sort.Slice(adjs, func(i, j int) bool {
		return adjs[i].CreatedAt.Before(adjs[j].CreatedAt)
	})
}

func (r *AdjustmentRepo) CreateTask(ctx context.Context, task *adjustment.Task) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.tasks[task.ID]; exists {
		return apperror.NewConflict("task already exists").WithDetail("id", task.ID)
	}
	t := *task
	r.store.tasks[task.ID] = &t
	return nil
}

func (r *AdjustmentRepo) GetTaskByAdjustment(ctx context.Context, adjID id.ID) (*adjustment.Task, error) {
	defer r.store.lock(ctx)()

	for _, t := range r.store.tasks {
		if t.AdjustmentID == adjID {
			c := *t
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("task", adjID)
}

func (r *AdjustmentRepo) UpdateTask(ctx context.Context, task *adjustment.Task) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.tasks[task.ID]; !ok {
		return apperror.NewNotFound("task", task.ID)
	}
	t := *task
	r.store.tasks[task.ID] = &t
	return nil
}
