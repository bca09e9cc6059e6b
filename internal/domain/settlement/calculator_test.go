package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/ledger"
)

func money(v int64) types.Money { return types.MoneyFromInt(v) }

func assertMoney(t *testing.T, want int64, got types.Money, field string) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), "%s: want %d, got %s", field, want, got)
}

func attendedAppt(pro id.ID, date time.Time, base, final int64) *appointment.Appointment {
	return &appointment.Appointment{
		ID:             id.New(),
		ProfessionalID: pro,
		TreatmentID:    id.New(),
		Date:           date,
		Status:         appointment.StatusAttended,
		BasePrice:      money(base),
		FinalPrice:     money(final),
	}
}

func TestCompute_CommissionSplitAbsorbsDiscount(t *testing.T) {
	pro := id.New()
	day := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	figures := Compute(Input{
		ProfessionalID: pro,
		Period:         types.DayPeriod(day),
		ClinicRate:     types.NewPercent(35),
		Appointments: []*appointment.Appointment{
			attendedAppt(pro, day, 10000, 9000),
		},
	})

	assert.Equal(t, 1, figures.AttendedCount)
	assertMoney(t, 10000, figures.BaseRevenue, "BaseRevenue")
	assertMoney(t, 9000, figures.TotalBilled, "TotalBilled")
	assertMoney(t, 1000, figures.DiscountAmount, "DiscountAmount")
	assertMoney(t, 6500, figures.ProfessionalEarnings, "ProfessionalEarnings")
	assertMoney(t, 3500, figures.ClinicCommission, "ClinicCommission")
	assertMoney(t, 2500, figures.TotalClinicCommission, "TotalClinicCommission")
	assertMoney(t, 2500, figures.AmountToSettle, "AmountToSettle")
}

func TestCompute_DiscountLargerThanCommissionFloorsAtZero(t *testing.T) {
	pro := id.New()
	day := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	figures := Compute(Input{
		ProfessionalID: pro,
		Period:         types.DayPeriod(day),
		ClinicRate:     types.NewPercent(35),
		Appointments: []*appointment.Appointment{
			attendedAppt(pro, day, 10000, 6000),
		},
	})

	assertMoney(t, 4000, figures.DiscountAmount, "DiscountAmount")
	assertMoney(t, 0, figures.TotalClinicCommission, "TotalClinicCommission")

	// The professional's share never shrinks because of a client discount.
	assertMoney(t, 6500, figures.ProfessionalEarnings, "ProfessionalEarnings")
	assert.True(t,
		figures.ProfessionalEarnings.Add(figures.ClinicCommission).Equal(figures.BaseRevenue),
		"split must partition base revenue exactly")
}

func TestCompute_NoShowDepositCappedPerTreatment(t *testing.T) {
	pro := id.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	capped := attendedAppt(pro, day, 8000, 8000)
	capped.Status = appointment.StatusNoShow
	capped.DepositAmount = money(5000)

	uncapped := attendedAppt(pro, day, 8000, 8000)
	uncapped.Status = appointment.StatusNoShow
	uncapped.DepositAmount = money(1500)

	figures := Compute(Input{
		ProfessionalID: pro,
		Period:         types.DayPeriod(day),
		ClinicRate:     types.NewPercent(35),
		Appointments:   []*appointment.Appointment{capped, uncapped},
		DepositCaps: map[id.ID]types.Money{
			capped.TreatmentID: money(2000),
		},
	})

	assert.Equal(t, 2, figures.NoShowCount)
	// 5000 capped to 2000, plus 1500 with no configured ceiling.
	assertMoney(t, 3500, figures.NoShowDepositsLost, "NoShowDepositsLost")
	assertMoney(t, 0, figures.BaseRevenue, "BaseRevenue")
}

func TestCompute_PerformanceAndCollectionsSelectIndependently(t *testing.T) {
	pro := id.New()
	other := id.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	period := types.DayPeriod(day)

	// Assigned and dated in the period, but the money was taken by a
	// colleague: performance only.
	performed := attendedAppt(pro, day.Add(10*time.Hour), 10000, 10000)
	performed.Payments = []appointment.Payment{
		{ID: id.New(), Amount: money(10000), Method: ledger.MethodCash, ReceivedBy: other, PaymentDate: day.Add(10 * time.Hour)},
	}

	// Dated last week and assigned to someone else, but this professional
	// collected cash and a transfer during the period: collections only.
	collected := attendedAppt(other, day.AddDate(0, 0, -7), 9000, 9000)
	collected.Payments = []appointment.Payment{
		{ID: id.New(), Amount: money(3000), Method: ledger.MethodCash, ReceivedBy: pro, PaymentDate: day.Add(12 * time.Hour)},
		{ID: id.New(), Amount: money(4000), Method: ledger.MethodTransfer, ReceivedBy: pro, PaymentDate: day.Add(13 * time.Hour)},
		{ID: id.New(), Amount: money(2000), Method: ledger.MethodCash, ReceivedBy: pro, PaymentDate: day.AddDate(0, 0, -7)},
	}

	figures := Compute(Input{
		ProfessionalID: pro,
		Period:         period,
		ClinicRate:     types.NewPercent(40),
		Appointments:   []*appointment.Appointment{performed, collected},
	})

	assert.Equal(t, 1, figures.AttendedCount)
	assertMoney(t, 10000, figures.BaseRevenue, "BaseRevenue")
	assertMoney(t, 3000, figures.CashCollected, "CashCollected")
	assertMoney(t, 4000, figures.TransferCollected, "TransferCollected")
}

func TestCompute_IgnoresUnrelatedAppointments(t *testing.T) {
	pro := id.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	foreign := attendedAppt(id.New(), day, 10000, 10000)
	outside := attendedAppt(pro, day.AddDate(0, 0, 1), 10000, 10000)
	pending := attendedAppt(pro, day, 10000, 10000)
	pending.Status = appointment.StatusPendingDeposit

	figures := Compute(Input{
		ProfessionalID: pro,
		Period:         types.DayPeriod(day),
		ClinicRate:     types.NewPercent(35),
		Appointments:   []*appointment.Appointment{foreign, outside, pending},
	})

	assert.Equal(t, 0, figures.AttendedCount)
	assertMoney(t, 0, figures.BaseRevenue, "BaseRevenue")
	assertMoney(t, 0, figures.AmountToSettle, "AmountToSettle")
}
