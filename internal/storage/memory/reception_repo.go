package memory

import (
	"context"
	"sort"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/domain/reception"
)

var _ reception.Repository = (*ReceptionRepo)(nil)

// ReceptionRepo implements reception.Repository over the store. Closes are
// keyed by their period string, which makes the once-per-period rule
// structural.
type ReceptionRepo struct {
	store *Store
}

func dailyKey(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}

func monthlyKey(month time.Month, year int) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (r *ReceptionRepo) CreateDaily(ctx context.Context, c *reception.DailyClose) error {
	defer r.store.lock(ctx)()

	key := dailyKey(c.Date)
	if _, exists := r.store.dailyCloses[key]; exists {
		return apperror.NewConflict("daily close already exists").WithDetail("date", key)
	}
	cp := *c
	r.store.dailyCloses[key] = &cp
	return nil
}

func (r *ReceptionRepo) CreateMonthly(ctx context.Context, c *reception.MonthlyClose) error {
	defer r.store.lock(ctx)()

	key := monthlyKey(c.Month, c.Year)
	if _, exists := r.store.monthlyCloses[key]; exists {
		return apperror.NewConflict("monthly close already exists").WithDetail("month", key)
	}
	cp := *c
	r.store.monthlyCloses[key] = &cp
	return nil
}

func (r *ReceptionRepo) FindDailyByDate(ctx context.Context, date time.Time) (*reception.DailyClose, error) {
	defer r.store.lock(ctx)()

	c, ok := r.store.dailyCloses[dailyKey(date)]
	if !ok {
		return nil, apperror.NewNotFound("daily close", dailyKey(date))
	}
	cp := *c
	return &cp, nil
}

func (r *ReceptionRepo) FindMonthly(ctx context.Context, month time.Month, year int) (*reception.MonthlyClose, error) {
	defer r.store.lock(ctx)()

	c, ok := r.store.monthlyCloses[monthlyKey(month, year)]
	if !ok {
		return nil, apperror.NewNotFound("monthly close", monthlyKey(month, year))
	}
	cp := *c
	return &cp, nil
}

func (r *ReceptionRepo) ListDaily(ctx context.Context, limit int) ([]*reception.DailyClose, error) {
	defer r.store.lock(ctx)()

	out := make([]*reception.DailyClose, 0, len(r.store.dailyCloses))
	for _, c := range r.store.dailyCloses {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReceptionRepo) ListMonthly(ctx context.Context, limit int) ([]*reception.MonthlyClose, error) {
	defer r.store.lock(ctx)()

	out := make([]*reception.MonthlyClose, 0, len(r.store.monthlyCloses))
	for _, c := range r.store.monthlyCloses {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
