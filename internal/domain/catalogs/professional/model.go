// Package professional provides the clinic professional catalog.
package professional

import (
	"context"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
)

// Professional is a practitioner whose attended sessions drive settlements.
type Professional struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// CommissionRate is the clinic's percentage cut of the professional's
	// undiscounted revenue. The professional keeps the complement; the two
	// rates sum to 100 by construction.
	CommissionRate types.Percent `db:"commission_rate" json:"commissionRate"`

	// CashInHand accumulates physically delivered, not-yet-settled cash.
	// Credited when the professional's register is closed with a positive balance.
	CashInHand types.Money `db:"cash_in_hand" json:"cashInHand"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an active professional with the given clinic commission rate.
func New(name string, commissionRate types.Percent) *Professional {
	now := time.Now().UTC()
	return &Professional{
		ID:             id.New(),
		Name:           name,
		CommissionRate: commissionRate,
		CashInHand:     types.Zero(),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ProfessionalRate returns the professional's share of the split (100 - clinic cut).
func (p *Professional) ProfessionalRate() types.Percent {
	return types.Complement(p.CommissionRate)
}

// Validate checks catalog invariants.
func (p *Professional) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThan(types.NewPercent(100)) {
		return apperror.NewValidation("commission rate must be between 0 and 100").
			WithDetail("field", "commissionRate").
			WithDetail("value", p.CommissionRate.String())
	}
	return nil
}

// Repository defines persistence operations for professionals.
type Repository interface {
	Create(ctx context.Context, p *Professional) error
	GetByID(ctx context.Context, professionalID id.ID) (*Professional, error)
	Update(ctx context.Context, p *Professional) error
	List(ctx context.Context) ([]*Professional, error)

	// CreditCashInHand adds amount to the professional's cash-in-hand
	// accumulator. Called by the ledger when a professional register is
	// closed with a positive balance.
	CreditCashInHand(ctx context.Context, professionalID id.ID, amount types.Money) error
}
