package adjustment

import (
	"context"

	"clinicash/internal/core/id"
)

// Repository defines persistence for adjustments and their follow-up tasks.
type Repository interface {
	Create(ctx context.Context, adj *Adjustment) error
	GetByID(ctx context.Context, adjID id.ID) (*Adjustment, error)
	Update(ctx context.Context, adj *Adjustment) error

	// ListByAppointment returns every adjustment tied to an appointment.
	// The gating rule (all must resolve before the appointment clears)
	// reads through here.
	ListByAppointment(ctx context.Context, apptID id.ID) ([]*Adjustment, error)

	// ListPending returns unresolved adjustments across all appointments.
	ListPending(ctx context.Context) ([]*Adjustment, error)

	CreateTask(ctx context.Context, task *Task) error
	GetTaskByAdjustment(ctx context.Context, adjID id.ID) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
}
