package memory

import (
	"context"
	"sort"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/appointment"
)

var _ appointment.Repository = (*AppointmentRepo)(nil)

// AppointmentRepo implements appointment.Repository over the store.
type AppointmentRepo struct {
	store *Store
}

func cloneAppointment(a *appointment.Appointment) *appointment.Appointment {
	c := *a
	c.Payments = append([]appointment.Payment(nil), a.Payments...)
	return &c
}

// Create stores a copy of the appointment.
func (r *AppointmentRepo) Create(ctx context.Context, appt *appointment.Appointment) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.appointments[appt.ID]; exists {
		return apperror.NewConflict("appointment already exists").WithDetail("id", appt.ID)
	}
	r.store.appointments[appt.ID] = cloneAppointment(appt)
	return nil
}

// GetByID returns a copy with payments loaded.
func (r *AppointmentRepo) GetByID(ctx context.Context, apptID id.ID) (*appointment.Appointment, error) {
	defer r.store.lock(ctx)()

	appt, ok := r.store.appointments[apptID]
	if !ok {
		return nil, apperror.NewNotFound("appointment", apptID)
	}
	return cloneAppointment(appt), nil
}

// Update replaces the stored appointment wholesale: scalar fields, aggregates
// and payment slice land together.
func (r *AppointmentRepo) Update(ctx context.Context, appt *appointment.Appointment) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.appointments[appt.ID]; !ok {
		return apperror.NewNotFound("appointment", appt.ID)
	}
	r.store.appointments[appt.ID] = cloneAppointment(appt)
	return nil
}

// List filters appointments, ordered by date.
func (r *AppointmentRepo) List(ctx context.Context, filter appointment.ListFilter) ([]*appointment.Appointment, error) {
	defer r.store.lock(ctx)()

	out := make([]*appointment.Appointment, 0)
	for _, a := range r.store.appointments {
		if filter.ProfessionalID != nil && a.ProfessionalID != *filter.ProfessionalID {
			continue
		}
		if filter.ClientID != nil && a.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.From != nil && a.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !a.Date.Before(*filter.To) {
			continue
		}
		out = append(out, cloneAppointment(a))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*appointment.Appointment{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ListForSettlement returns the union snapshot the calculator filters:
// performance candidates (assigned + dated in range) and collection
// candidates (payment received by the professional in range).
func (r *AppointmentRepo) ListForSettlement(ctx context.Context, professionalID id.ID, from, to time.Time) ([]*appointment.Appointment, error) {
	defer r.store.lock(ctx)()

	out := make([]*appointment.Appointment, 0)
	for _, a := range r.store.appointments {
		if a.ProfessionalID == professionalID && inRange(a.Date, from, to) {
			out = append(out, cloneAppointment(a))
			continue
		}
		for _, p := range a.Payments {
			if p.ReceivedBy == professionalID && inRange(p.PaymentDate, from, to) {
				out = append(out, cloneAppointment(a))
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
