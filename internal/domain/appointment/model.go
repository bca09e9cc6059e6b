// Package appointment provides the financial state embedded in each
// appointment and its payment sub-ledger. Scheduling, clinical notes and the
// booking flow live elsewhere; this package owns only the money.
package appointment

import (
	"context"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/ledger"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPendingDeposit Status = "pending_deposit"
	StatusConfirmed      Status = "confirmed"
	StatusAttended       Status = "attended"
	StatusClosed         Status = "closed"
	StatusNoShow         Status = "no_show"
	StatusCancelled      Status = "cancelled"
)

// ResolutionStatus reflects the aggregate state of the appointment's
// inter-professional adjustments.
type ResolutionStatus string

const (
	// ResolutionOK means no adjustment is outstanding.
	ResolutionOK ResolutionStatus = "ok"
	// ResolutionPending means at least one adjustment is unresolved.
	ResolutionPending ResolutionStatus = "pending_adjustments"
)

// Payment is one partial or full payment against an appointment.
// Owned exclusively by its appointment.
type Payment struct {
	ID     id.ID                `db:"id" json:"id"`
	Amount types.Money          `db:"amount" json:"amount"`
	Method ledger.PaymentMethod `db:"method" json:"method"`

	// ReceivedBy is the professional who physically took the money. It can
	// differ from the appointment's assigned professional after a
	// reassignment; that difference is what adjustments reconcile.
	ReceivedBy id.ID `db:"received_by" json:"receivedBy"`

	IsDeposit   bool      `db:"is_deposit" json:"isDeposit"`
	PaymentDate time.Time `db:"payment_date" json:"paymentDate"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
}

// Appointment carries the financial fields of one booked session.
type Appointment struct {
	ID             id.ID `db:"id" json:"id"`
	ClientID       id.ID `db:"client_id" json:"clientId"`
	ProfessionalID id.ID `db:"professional_id" json:"professionalId"`
	TreatmentID    id.ID `db:"treatment_id" json:"treatmentId"`

	Date   time.Time `db:"date" json:"date"`
	Status Status    `db:"status" json:"status"`

	// Pricing snapshot taken at booking time.
	BasePrice       types.Money   `db:"base_price" json:"basePrice"`
	DiscountPercent types.Percent `db:"discount_percent" json:"discountPercent"`
	FinalPrice      types.Money   `db:"final_price" json:"finalPrice"`

	// RecommendedDeposit is the deposit expected before confirmation,
	// snapshotted from the treatment's policy.
	RecommendedDeposit types.Money `db:"recommended_deposit" json:"recommendedDeposit"`

	// Aggregates re-derived from Payments on every append/remove.
	PaidAmount        types.Money `db:"paid_amount" json:"paidAmount"`
	CashCollected     types.Money `db:"cash_collected" json:"cashCollected"`
	TransferCollected types.Money `db:"transfer_collected" json:"transferCollected"`
	DepositAmount     types.Money `db:"deposit_amount" json:"depositAmount"`
	IsPaid            bool        `db:"is_paid" json:"isPaid"`
	IsDepositComplete bool        `db:"is_deposit_complete" json:"isDepositComplete"`

	PaymentResolutionStatus ResolutionStatus `db:"payment_resolution_status" json:"paymentResolutionStatus"`

	Payments []Payment `db:"-" json:"payments"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a pending-deposit appointment with its pricing snapshot.
// finalPrice = basePrice minus the client's discount.
func New(clientID, professionalID, treatmentID id.ID, date time.Time, basePrice types.Money, discountPercent types.Percent, recommendedDeposit types.Money) *Appointment {
	now := time.Now().UTC()
	finalPrice := basePrice.Sub(types.ApplyPercent(basePrice, discountPercent))
	return &Appointment{
		ID:                      id.New(),
		ClientID:                clientID,
		ProfessionalID:          professionalID,
		TreatmentID:             treatmentID,
		Date:                    date,
		Status:                  StatusPendingDeposit,
		BasePrice:               basePrice,
		DiscountPercent:         discountPercent,
		FinalPrice:              finalPrice,
		RecommendedDeposit:      recommendedDeposit,
		PaidAmount:              types.Zero(),
		CashCollected:           types.Zero(),
		TransferCollected:       types.Zero(),
		DepositAmount:           types.Zero(),
		PaymentResolutionStatus: ResolutionOK,
		Payments:                make([]Payment, 0),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// DiscountAmount returns the client discount absorbed on this appointment.
func (a *Appointment) DiscountAmount() types.Money {
	return a.BasePrice.Sub(a.FinalPrice)
}

// Outstanding returns the amount still owed, floored at zero.
func (a *Appointment) Outstanding() types.Money {
	return types.MaxMoney(a.FinalPrice.Sub(a.PaidAmount), types.Zero())
}

// Recalculate re-derives every aggregate field from the payment slice.
// Append and remove both funnel through here so the arithmetic is a single
// exact inverse pair.
func (a *Appointment) Recalculate() {
	paid := types.Zero()
	cash := types.Zero()
	transfer := types.Zero()
	deposit := types.Zero()

	for _, p := range a.Payments {
		paid = paid.Add(p.Amount)
		switch p.Method {
		case ledger.MethodCash:
			cash = cash.Add(p.Amount)
		case ledger.MethodTransfer:
			transfer = transfer.Add(p.Amount)
		}
		if p.IsDeposit {
			deposit = deposit.Add(p.Amount)
		}
	}

	a.PaidAmount = paid
	a.CashCollected = cash
	a.TransferCollected = transfer
	a.DepositAmount = deposit
	a.IsPaid = paid.GreaterThanOrEqual(a.FinalPrice)
	a.IsDepositComplete = deposit.GreaterThanOrEqual(a.RecommendedDeposit)
	a.UpdatedAt = time.Now().UTC()
}

// FindPayment returns the payment with the given id, or nil.
func (a *Appointment) FindPayment(paymentID id.ID) *Payment {
	for i := range a.Payments {
		if a.Payments[i].ID == paymentID {
			return &a.Payments[i]
		}
	}
	return nil
}

// ForeignPayments returns payments received by someone other than the
// assigned professional, grouped by receiving professional.
func (a *Appointment) ForeignPayments() map[id.ID][]Payment {
	foreign := make(map[id.ID][]Payment)
	for _, p := range a.Payments {
		if !id.IsNil(p.ReceivedBy) && p.ReceivedBy != a.ProfessionalID {
			foreign[p.ReceivedBy] = append(foreign[p.ReceivedBy], p)
		}
	}
	return foreign
}

// Validate checks structural invariants of a new appointment.
func (a *Appointment) Validate(ctx context.Context) error {
	if id.IsNil(a.ProfessionalID) {
		return apperror.NewValidation("professional is required").
			WithDetail("field", "professionalId")
	}
	if id.IsNil(a.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if a.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if a.BasePrice.IsNegative() {
		return apperror.NewValidation("base price cannot be negative").
			WithDetail("field", "basePrice")
	}
	if a.FinalPrice.IsNegative() {
		return apperror.NewValidation("final price cannot be negative").
			WithDetail("field", "finalPrice")
	}
	return nil
}
