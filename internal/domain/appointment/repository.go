package appointment

import (
	"context"
	"time"

	"clinicash/internal/core/id"
)

// Repository defines persistence for appointments and their payment sub-ledger.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error

	// GetByID returns the appointment with its payments loaded.
	GetByID(ctx context.Context, apptID id.ID) (*Appointment, error)

	// Update persists the appointment's scalar fields and replaces its
	// payment slice. Aggregates and payments must be written together so a
	// reader never sees totals without the backing entries.
	Update(ctx context.Context, appt *Appointment) error

	// List returns appointments matching the filter, payments loaded.
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)

	// ListForSettlement returns the snapshot the settlement calculator
	// needs for one professional and period: appointments assigned to the
	// professional whose date falls in [from, to), plus any appointment
	// carrying a payment received by the professional dated in [from, to).
	ListForSettlement(ctx context.Context, professionalID id.ID, from, to time.Time) ([]*Appointment, error)
}

// ListFilter narrows appointment queries.
type ListFilter struct {
	ProfessionalID *id.ID
	ClientID       *id.ID
	Status         *Status
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
