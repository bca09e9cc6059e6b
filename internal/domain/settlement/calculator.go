package settlement

import (
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/ledger"
)

// Input is the read-only snapshot a settlement is computed from.
//
// Appointments must include every appointment that can contribute to either
// block: those assigned to the professional with a date in the period
// (performance) and those carrying payments the professional received during
// the period (collections). Extra appointments are harmless; the calculator
// filters.
type Input struct {
	ProfessionalID id.ID
	Period         types.Period

	// ClinicRate is the clinic's percentage cut (the professional's
	// configured commission rate; the professional keeps 100 - ClinicRate).
	ClinicRate types.Percent

	Appointments []*appointment.Appointment

	// DepositCaps maps treatment id to the maximum deposit a professional
	// may keep on a no-show.
	DepositCaps map[id.ID]types.Money
}

// Compute derives settlement figures from the snapshot. Pure: no clock, no
// storage, no mutation of the input.
//
// Two independent views are combined. Block A (performance) selects by
// appointment date and assigned professional and drives the commission
// split. Block B (collections) selects by payment date and receiving
// professional and only describes cash flow. The same appointment can
// appear in both, in neither, or in just one.
func Compute(in Input) Figures {
	f := Figures{
		BaseRevenue:           types.Zero(),
		TotalBilled:           types.Zero(),
		DiscountAmount:        types.Zero(),
		ProfessionalEarnings:  types.Zero(),
		ClinicCommission:      types.Zero(),
		TotalClinicCommission: types.Zero(),
		NoShowDepositsLost:    types.Zero(),
		CashCollected:         types.Zero(),
		TransferCollected:     types.Zero(),
		AmountToSettle:        types.Zero(),
	}

	professionalRate := types.Complement(in.ClinicRate)

	for _, appt := range in.Appointments {
		// Block A: performance by appointment date.
		if appt.ProfessionalID == in.ProfessionalID && in.Period.Contains(appt.Date) {
			switch appt.Status {
			case appointment.StatusAttended, appointment.StatusClosed:
				f.AttendedCount++
				f.BaseRevenue = f.BaseRevenue.Add(appt.BasePrice)
				f.TotalBilled = f.TotalBilled.Add(appt.FinalPrice)
			case appointment.StatusNoShow:
				f.NoShowCount++
				f.NoShowDepositsLost = f.NoShowDepositsLost.Add(noShowCompensation(appt, in.DepositCaps))
			}
		}

		// Block B: collections by payment date and receiver, regardless of
		// which period the appointment itself belongs to.
		for _, p := range appt.Payments {
			if p.ReceivedBy != in.ProfessionalID || !in.Period.Contains(p.PaymentDate) {
				continue
			}
			switch p.Method {
			case ledger.MethodCash:
				f.CashCollected = f.CashCollected.Add(p.Amount)
			case ledger.MethodTransfer:
				f.TransferCollected = f.TransferCollected.Add(p.Amount)
			}
		}
	}

	// Discounts are granted to clients out of the clinic's pocket: the
	// split runs over undiscounted revenue and the clinic's commission
	// absorbs the discount, floored at zero. The professional's share is
	// untouched by any discount.
	f.DiscountAmount = f.BaseRevenue.Sub(f.TotalBilled)
	f.ProfessionalEarnings = types.ApplyPercent(f.BaseRevenue, professionalRate)
	f.ClinicCommission = types.ApplyPercent(f.BaseRevenue, in.ClinicRate)
	f.TotalClinicCommission = types.MaxMoney(f.ClinicCommission.Sub(f.DiscountAmount), types.Zero())
	f.AmountToSettle = f.TotalClinicCommission

	return f
}

// noShowCompensation caps the kept deposit at the treatment's configured
// ceiling. An overpaid or misconfigured deposit never inflates the
// professional's no-show compensation.
func noShowCompensation(appt *appointment.Appointment, caps map[id.ID]types.Money) types.Money {
	paid := appt.DepositAmount
	if ceiling, ok := caps[appt.TreatmentID]; ok {
		return types.MinMoney(paid, ceiling)
	}
	return paid
}
