package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/domain/settlement"
	"clinicash/internal/storage/memory"
)

func money(v int64) types.Money { return types.MoneyFromInt(v) }

type fixture struct {
	svc       *settlement.Service
	registers *ledger.Service
	store     *memory.Store

	pro       *professional.Professional
	treatment *treatment.Treatment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	registers := ledger.NewService(store.Ledger(), store.Professionals(), txm)

	pro := professional.New("Dra. Vargas", types.NewPercent(35))
	require.NoError(t, store.Professionals().Create(ctx, pro))

	// 30% recommended deposit, capped at 2000 on a no-show.
	tr := treatment.New("Limpieza facial", money(10000), types.NewPercent(30), money(2000))
	require.NoError(t, store.Treatments().Create(ctx, tr))

	svc := settlement.NewService(
		store.Settlements(),
		store.Appointments(),
		store.Professionals(),
		store.Treatments(),
		registers,
		txm,
	)
	return &fixture{svc: svc, registers: registers, store: store, pro: pro, treatment: tr}
}

func (f *fixture) addAppointment(t *testing.T, date time.Time, discount int64, status appointment.Status) *appointment.Appointment {
	t.Helper()
	appt := appointment.New(
		id.New(), f.pro.ID, f.treatment.ID, date,
		f.treatment.BasePrice, types.NewPercent(discount), f.treatment.RecommendedDeposit(),
	)
	appt.Status = status
	require.NoError(t, f.store.Appointments().Create(context.Background(), appt))
	return appt
}

func TestGenerateDaily_FiguresAndDuplicateGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 10, appointment.StatusAttended)

	daily, err := f.svc.GenerateDaily(ctx, f.pro.ID, day)
	require.NoError(t, err)

	assert.Equal(t, settlement.StatusPending, daily.Status)
	assert.Equal(t, 1, daily.AttendedCount)
	assert.True(t, daily.BaseRevenue.Equal(money(10000)))
	assert.True(t, daily.TotalBilled.Equal(money(9000)))
	assert.True(t, daily.ProfessionalEarnings.Equal(money(6500)))
	assert.True(t, daily.TotalClinicCommission.Equal(money(2500)))

	_, err = f.svc.GenerateDaily(ctx, f.pro.ID, day.Add(2*time.Hour))
	assert.True(t, apperror.IsDuplicatePeriod(err), "got %v", err)
}

func TestGenerateMonthly_AccruesCappedNoShowDeposits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 0, appointment.StatusAttended)

	noShow := f.addAppointment(t, day.AddDate(0, 0, 1), 0, appointment.StatusNoShow)
	noShow.Payments = []appointment.Payment{{
		ID: id.New(), Amount: money(3000), Method: ledger.MethodCash,
		ReceivedBy: f.pro.ID, IsDeposit: true, PaymentDate: day,
	}}
	noShow.Recalculate()
	require.NoError(t, f.store.Appointments().Update(ctx, noShow))

	monthly, err := f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	require.NoError(t, err)

	// The 3000 deposit is capped at the treatment's 2000 ceiling.
	assert.True(t, monthly.NoShowDepositsLost.Equal(money(2000)))
	assert.True(t, monthly.ProfessionalEarningsNoShow.Equal(money(2000)))
	assert.True(t, monthly.ProfessionalEarnings.Equal(money(6500)))
	assert.True(t, monthly.TotalProfessionalEarnings.Equal(money(8500)))
	assert.Equal(t, 1, monthly.NoShowCount)

	_, err = f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	assert.True(t, apperror.IsDuplicatePeriod(err), "got %v", err)
}

func TestConfirmDaily_ReviewsWithoutMovingCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 0, appointment.StatusAttended)
	daily, err := f.svc.GenerateDaily(ctx, f.pro.ID, day)
	require.NoError(t, err)

	require.NoError(t, f.svc.Confirm(ctx, daily.ID))

	got, err := f.svc.Get(ctx, daily.ID)
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusReviewed, got.GetBase().Status)
	assert.NotNil(t, got.GetBase().ConfirmedAt)

	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, log)

	// The review is final: a second confirm must not re-stamp it.
	firstConfirmedAt := *got.GetBase().ConfirmedAt
	err = f.svc.Confirm(ctx, daily.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeSettlementConfirmed, appErr.Code)

	again, err := f.svc.Get(ctx, daily.ID)
	require.NoError(t, err)
	assert.True(t, again.GetBase().ConfirmedAt.Equal(firstConfirmedAt))
}

func TestConfirmMonthly_PostsAdministratorTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 0, appointment.StatusAttended)
	monthly, err := f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	require.NoError(t, err)
	require.True(t, monthly.AmountToSettle.Equal(money(3500)))

	require.NoError(t, f.svc.Confirm(ctx, monthly.ID))

	got, err := f.svc.Get(ctx, monthly.ID)
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusPaid, got.GetBase().Status)

	balance, err := f.registers.Balance(ctx, ledger.AdministratorOwner())
	require.NoError(t, err)
	assert.True(t, balance.Equal(money(3500)))

	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{SettlementID: &monthly.ID})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, ledger.TypeSettlementTransfer, log[0].Type)

	err = f.svc.Confirm(ctx, monthly.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeSettlementConfirmed, appErr.Code)
}

func TestDelete_RevertsTaggedTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 0, appointment.StatusAttended)
	monthly, err := f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	require.NoError(t, err)
	require.NoError(t, f.svc.Confirm(ctx, monthly.ID))

	require.NoError(t, f.svc.Delete(ctx, monthly.ID))

	_, err = f.svc.Get(ctx, monthly.ID)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	balance, err := f.registers.Balance(ctx, ledger.AdministratorOwner())
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "transfer must be reverted, got %s", balance)

	// Deleting makes room for a regenerate of the same period.
	_, err = f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	require.NoError(t, err)
}

func TestRecordPayment_AccumulatesPartials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 0, appointment.StatusAttended)
	monthly, err := f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	require.NoError(t, err)

	err = f.svc.RecordPayment(ctx, monthly.ID, settlement.Payment{Amount: money(-5)})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	require.NoError(t, f.svc.RecordPayment(ctx, monthly.ID, settlement.Payment{
		Amount: money(2000), Method: ledger.MethodCash,
	}))
	require.NoError(t, f.svc.RecordPayment(ctx, monthly.ID, settlement.Payment{
		Amount: money(1500), Method: ledger.MethodTransfer,
	}))

	got, err := f.svc.Get(ctx, monthly.ID)
	require.NoError(t, err)
	assert.True(t, got.GetBase().PaidTotal().Equal(money(3500)))
	require.Len(t, got.GetBase().Payments, 2)
}

func TestListByProfessional_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	f.addAppointment(t, day, 0, appointment.StatusAttended)

	_, err := f.svc.GenerateDaily(ctx, f.pro.ID, day)
	require.NoError(t, err)
	monthly, err := f.svc.GenerateMonthly(ctx, f.pro.ID, time.April, 2026)
	require.NoError(t, err)

	list, err := f.svc.ListByProfessional(ctx, f.pro.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, monthly.ID, list[0].GetID(), "most recently generated first")
}
