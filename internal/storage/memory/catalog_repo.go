package memory

import (
	"context"
	"sort"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
)

var (
	_ professional.Repository = (*ProfessionalRepo)(nil)
	_ treatment.Repository    = (*TreatmentRepo)(nil)
)

// ProfessionalRepo implements professional.Repository over the store.
type ProfessionalRepo struct {
	store *Store
}

func (r *ProfessionalRepo) Create(ctx context.Context, p *professional.Professional) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.professionals[p.ID]; exists {
		return apperror.NewConflict("professional already exists").WithDetail("id", p.ID)
	}
	cp := *p
	r.store.professionals[p.ID] = &cp
	return nil
}

func (r *ProfessionalRepo) GetByID(ctx context.Context, professionalID id.ID) (*professional.Professional, error) {
	defer r.store.lock(ctx)()

	p, ok := r.store.professionals[professionalID]
	if !ok {
		return nil, apperror.NewNotFound("professional", professionalID)
	}
	cp := *p
	return &cp, nil
}

func (r *ProfessionalRepo) Update(ctx context.Context, p *professional.Professional) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.professionals[p.ID]; !ok {
		return apperror.NewNotFound("professional", p.ID)
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	r.store.professionals[p.ID] = &cp
	return nil
}

func (r *ProfessionalRepo) List(ctx context.Context) ([]*professional.Professional, error) {
	defer r.store.lock(ctx)()

	out := make([]*professional.Professional, 0, len(r.store.professionals))
	for _, p := range r.store.professionals {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProfessionalRepo) CreditCashInHand(ctx context.Context, professionalID id.ID, amount types.Money) error {
	defer r.store.lock(ctx)()

	p, ok := r.store.professionals[professionalID]
	if !ok {
		return apperror.NewNotFound("professional", professionalID)
	}
	p.CashInHand = p.CashInHand.Add(amount)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// TreatmentRepo implements treatment.Repository over the store.
type TreatmentRepo struct {
	store *Store
}

func (r *TreatmentRepo) Create(ctx context.Context, t *treatment.Treatment) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.treatments[t.ID]; exists {
		return apperror.NewConflict("treatment already exists").WithDetail("id", t.ID)
	}
	cp := *t
	r.store.treatments[t.ID] = &cp
	return nil
}

func (r *TreatmentRepo) GetByID(ctx context.Context, treatmentID id.ID) (*treatment.Treatment, error) {
	defer r.store.lock(ctx)()

	t, ok := r.store.treatments[treatmentID]
	if !ok {
		return nil, apperror.NewNotFound("treatment", treatmentID)
	}
	cp := *t
	return &cp, nil
}

func (r *TreatmentRepo) Update(ctx context.Context, t *treatment.Treatment) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.treatments[t.ID]; !ok {
		return apperror.NewNotFound("treatment", t.ID)
	}
	cp := *t
	cp.UpdatedAt = time.Now().UTC()
	r.store.treatments[t.ID] = &cp
	return nil
}

func (r *TreatmentRepo) List(ctx context.Context) ([]*treatment.Treatment, error) {
	defer r.store.lock(ctx)()

	out := make([]*treatment.Treatment, 0, len(r.store.treatments))
	for _, t := range r.store.treatments {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
