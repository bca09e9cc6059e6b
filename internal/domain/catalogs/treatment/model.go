// Package treatment provides the clinic service catalog (session types,
// base prices, deposit policy).
package treatment

import (
	"context"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
)

// Treatment is a bookable service with its pricing and deposit policy.
type Treatment struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	BasePrice types.Money `db:"base_price" json:"basePrice"`

	// DepositPercent is the recommended deposit as a percentage of the base price.
	DepositPercent types.Percent `db:"deposit_percent" json:"depositPercent"`

	// MaxDeposit caps how much of a no-show's deposit the professional may
	// keep. Guards against a misconfigured or overpaid deposit inflating
	// no-show compensation.
	MaxDeposit types.Money `db:"max_deposit" json:"maxDeposit"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an active treatment.
func New(name string, basePrice types.Money, depositPercent types.Percent, maxDeposit types.Money) *Treatment {
	now := time.Now().UTC()
	return &Treatment{
		ID:             id.New(),
		Name:           name,
		BasePrice:      basePrice,
		DepositPercent: depositPercent,
		MaxDeposit:     maxDeposit,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecommendedDeposit returns the deposit expected at booking time.
func (t *Treatment) RecommendedDeposit() types.Money {
	return types.ApplyPercent(t.BasePrice, t.DepositPercent)
}

// Validate checks catalog invariants.
func (t *Treatment) Validate(ctx context.Context) error {
	if t.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if t.BasePrice.IsNegative() {
		return apperror.NewValidation("base price cannot be negative").
			WithDetail("field", "basePrice")
	}
	if t.MaxDeposit.IsNegative() {
		return apperror.NewValidation("max deposit cannot be negative").
			WithDetail("field", "maxDeposit")
	}
	return nil
}

// Repository defines persistence operations for treatments.
type Repository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, treatmentID id.ID) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	List(ctx context.Context) ([]*Treatment, error)
}
