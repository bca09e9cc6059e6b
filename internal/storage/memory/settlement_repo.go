package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/settlement"
)

var _ settlement.Repository = (*SettlementRepo)(nil)

// SettlementRepo implements settlement.Repository over the store. Daily and
// monthly variants live in separate maps; Get and Delete look in both.
type SettlementRepo struct {
	store *Store
}

func cloneDaily(s *settlement.Daily) *settlement.Daily {
	c := *s
	c.Payments = append([]settlement.Payment(nil), s.Payments...)
	return &c
}

func cloneMonthly(s *settlement.Monthly) *settlement.Monthly {
	c := *s
	c.Payments = append([]settlement.Payment(nil), s.Payments...)
	return &c
}

func (r *SettlementRepo) CreateDaily(ctx context.Context, s *settlement.Daily) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.dailySettlements[s.ID]; exists {
		return apperror.NewConflict("settlement already exists").WithDetail("id", s.ID)
	}
	r.store.dailySettlements[s.ID] = cloneDaily(s)
	return nil
}

func (r *SettlementRepo) CreateMonthly(ctx context.Context, s *settlement.Monthly) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.monthlySettlements[s.ID]; exists {
		return apperror.NewConflict("settlement already exists").WithDetail("id", s.ID)
	}
	r.store.monthlySettlements[s.ID] = cloneMonthly(s)
	return nil
}

func (r *SettlementRepo) Get(ctx context.Context, settlementID id.ID) (settlement.Settlement, error) {
	defer r.store.lock(ctx)()

	if d, ok := r.store.dailySettlements[settlementID]; ok {
		return cloneDaily(d), nil
	}
	if m, ok := r.store.monthlySettlements[settlementID]; ok {
		return cloneMonthly(m), nil
	}
	return nil, apperror.NewNotFound("settlement", settlementID)
}

func (r *SettlementRepo) Update(ctx context.Context, s settlement.Settlement) error {
	defer r.store.lock(ctx)()

	switch v := s.(type) {
	case *settlement.Daily:
		if _, ok := r.store.dailySettlements[v.ID]; !ok {
			return apperror.NewNotFound("settlement", v.ID)
		}
		r.store.dailySettlements[v.ID] = cloneDaily(v)
	case *settlement.Monthly:
		if _, ok := r.store.monthlySettlements[v.ID]; !ok {
			return apperror.NewNotFound("settlement", v.ID)
		}
		r.store.monthlySettlements[v.ID] = cloneMonthly(v)
	default:
		return apperror.NewInternal(fmt.Errorf("unknown settlement variant %T", s))
	}
	return nil
}

func (r *SettlementRepo) Delete(ctx context.Context, settlementID id.ID) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.dailySettlements[settlementID]; ok {
		delete(r.store.dailySettlements, settlementID)
		return nil
	}
	if _, ok := r.store.monthlySettlements[settlementID]; ok {
		delete(r.store.monthlySettlements, settlementID)
		return nil
	}
	return apperror.NewNotFound("settlement", settlementID)
}

func (r *SettlementRepo) FindDaily(ctx context.Context, professionalID id.ID, date time.Time) (*settlement.Daily, error) {
	defer r.store.lock(ctx)()

	for _, d := range r.store.dailySettlements {
		if d.ProfessionalID == professionalID && types.SameDay(d.Date, date) {
			return cloneDaily(d), nil
		}
	}
	return nil, apperror.NewNotFound("daily settlement", professionalID)
}

func (r *SettlementRepo) FindMonthly(ctx context.Context, professionalID id.ID, month time.Month, year int) (*settlement.Monthly, error) {
	defer r.store.lock(ctx)()

	for _, m := range r.store.monthlySettlements {
		if m.ProfessionalID == professionalID && m.Month == month && m.Year == year {
			return cloneMonthly(m), nil
		}
	}
	return nil, apperror.NewNotFound("monthly settlement", professionalID)
}

func (r *SettlementRepo) ListByProfessional(ctx context.Context, professionalID id.ID) ([]settlement.Settlement, error) {
	defer r.store.lock(ctx)()

	out := make([]settlement.Settlement, 0)
	for _, d := range r.store.dailySettlements {
		if d.ProfessionalID == professionalID {
			out = append(out, cloneDaily(d))
		}
	}
	for _, m := range r.store.monthlySettlements {
		if m.ProfessionalID == professionalID {
			out = append(out, cloneMonthly(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GetBase().GeneratedAt.After(out[j].GetBase().GeneratedAt)
	})
	return out, nil
}
