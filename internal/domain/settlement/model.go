// Package settlement derives per-professional settlements from appointments
// and payments, and manages their confirmation and deletion lifecycle.
package settlement

import (
	"time"

	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/ledger"
)

// Kind distinguishes the two settlement variants.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindMonthly Kind = "monthly"
)

// Status is the settlement review lifecycle.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusPaid     Status = "paid"
)

// Figures holds every computed amount of a settlement. Inputs are immutable:
// correcting a settlement means deleting and regenerating it, never editing
// the figures.
type Figures struct {
	AttendedCount int `db:"attended_count" json:"attendedCount"`
	NoShowCount   int `db:"no_show_count" json:"noShowCount"`

	// Block A: performance, keyed by appointment date.
	BaseRevenue    types.Money `db:"base_revenue" json:"baseRevenue"`
	TotalBilled    types.Money `db:"total_billed" json:"totalBilled"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`

	// Commission split, always computed on BaseRevenue: client discounts
	// are a clinic concession and never reduce the professional's cut.
	ProfessionalEarnings types.Money `db:"professional_earnings" json:"professionalEarnings"`
	ClinicCommission     types.Money `db:"clinic_commission" json:"clinicCommission"`

	// TotalClinicCommission is the clinic's cut net of absorbed discounts,
	// floored at zero.
	TotalClinicCommission types.Money `db:"total_clinic_commission" json:"totalClinicCommission"`

	// NoShowDepositsLost compensates the professional for no-shows, each
	// deposit capped at the treatment's configured ceiling.
	NoShowDepositsLost types.Money `db:"no_show_deposits_lost" json:"noShowDepositsLost"`

	// Block B: collections, keyed by payment date and receiving
	// professional. Informational cash-flow visibility only; it never
	// feeds the commission math.
	CashCollected     types.Money `db:"cash_collected" json:"cashCollected"`
	TransferCollected types.Money `db:"transfer_collected" json:"transferCollected"`

	// AmountToSettle is what the professional owes the clinic for the
	// period.
	AmountToSettle types.Money `db:"amount_to_settle" json:"amountToSettle"`
}

// Payment is a partial payment recorded against a settlement.
type Payment struct {
	ID     id.ID                `db:"id" json:"id"`
	Amount types.Money          `db:"amount" json:"amount"`
	Method ledger.PaymentMethod `db:"method" json:"method"`
	PaidAt time.Time            `db:"paid_at" json:"paidAt"`
	Notes  string               `db:"notes" json:"notes,omitempty"`
}

// Base carries the fields shared by both settlement variants.
type Base struct {
	ID             id.ID  `db:"id" json:"id"`
	ProfessionalID id.ID  `db:"professional_id" json:"professionalId"`
	Status         Status `db:"status" json:"status"`

	Figures

	Payments []Payment `db:"-" json:"payments"`

	GeneratedAt time.Time  `db:"generated_at" json:"generatedAt"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`
}

// Daily is the single-calendar-day settlement. It accumulates figures for
// visibility during the month; confirming one never moves cash.
type Daily struct {
	Base
	Date time.Time `db:"date" json:"date"`
}

// Monthly is the full-month settlement. Confirming one posts the
// settlement transfer to the administrator register, and no-show deposit
// compensation accrues to the professional here and only here.
type Monthly struct {
	Base
	Month time.Month `db:"month" json:"month"`
	Year  int        `db:"year" json:"year"`

	// ProfessionalEarningsNoShow mirrors NoShowDepositsLost into the
	// professional's earnings; the daily variant reports the figure
	// without accruing it.
	ProfessionalEarningsNoShow types.Money `db:"professional_earnings_no_show" json:"professionalEarningsNoShow"`
	TotalProfessionalEarnings  types.Money `db:"total_professional_earnings" json:"totalProfessionalEarnings"`
}

// Settlement is the common read surface over both variants.
type Settlement interface {
	GetID() id.ID
	GetKind() Kind
	GetBase() *Base
	Period() types.Period
}

func (d *Daily) GetID() id.ID    { return d.ID }
func (d *Daily) GetKind() Kind   { return KindDaily }
func (d *Daily) GetBase() *Base  { return &d.Base }
func (d *Daily) Period() types.Period {
	return types.DayPeriod(d.Date)
}

func (m *Monthly) GetID() id.ID   { return m.ID }
func (m *Monthly) GetKind() Kind  { return KindMonthly }
func (m *Monthly) GetBase() *Base { return &m.Base }
func (m *Monthly) Period() types.Period {
	return types.MonthPeriod(m.Month, m.Year)
}

// PaidTotal sums the partial payments recorded against the settlement.
func (b *Base) PaidTotal() types.Money {
	total := types.Zero()
	for _, p := range b.Payments {
		total = total.Add(p.Amount)
	}
	return total
}
