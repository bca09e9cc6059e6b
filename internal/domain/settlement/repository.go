package settlement

import (
	"context"
	"time"

	"clinicash/internal/core/id"
)

// Repository defines persistence for both settlement variants.
type Repository interface {
	CreateDaily(ctx context.Context, s *Daily) error
	CreateMonthly(ctx context.Context, s *Monthly) error

	// Get resolves either variant by id.
	Get(ctx context.Context, settlementID id.ID) (Settlement, error)

	// Update persists status, confirmation timestamp and the payment slice
	// of either variant.
	Update(ctx context.Context, s Settlement) error

	// Delete removes the settlement and its recorded payments.
	Delete(ctx context.Context, settlementID id.ID) error

	// FindDaily returns the daily settlement for professional+date, or a
	// not-found error. Period uniqueness checks go through here.
	FindDaily(ctx context.Context, professionalID id.ID, date time.Time) (*Daily, error)

	// FindMonthly returns the monthly settlement for professional+month+year.
	FindMonthly(ctx context.Context, professionalID id.ID, month time.Month, year int) (*Monthly, error)

	// ListByProfessional returns every settlement for a professional,
	// newest first.
	ListByProfessional(ctx context.Context, professionalID id.ID) ([]Settlement, error)
}
