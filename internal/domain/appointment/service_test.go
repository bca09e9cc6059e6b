package appointment_test

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
	"clinicash/internal/domain/ledger"
	"clinicash/internal/storage/memory"
)

func money(v int64) types.Money { return types.MoneyFromInt(v) }

type fixture struct {
	svc       *appointment.Service
	registers *ledger.Service
	store     *memory.Store
	pro       id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	registers := ledger.NewService(store.Ledger(), store.Professionals(), txm)
	return &fixture{
		svc:       appointment.NewService(store.Appointments(), registers, txm),
		registers: registers,
		store:     store,
		pro:       id.New(),
	}
}

// newAppointment books a 10000 session with a 3000 recommended deposit.
func (f *fixture) newAppointment(t *testing.T) *appointment.Appointment {
	t.Helper()
	appt := appointment.New(
		id.New(), f.pro, id.New(),
		time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		money(10000), types.Zero(), money(3000),
	)
	require.NoError(t, f.svc.Create(context.Background(), appt))
	return appt
}

func TestAddPayment_Validations(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		payment appointment.Payment
	}{
		{"zero amount", appointment.Payment{Amount: types.Zero(), Method: ledger.MethodCash, ReceivedBy: f.pro}},
		{"negative amount", appointment.Payment{Amount: money(-100), Method: ledger.MethodCash, ReceivedBy: f.pro}},
		{"unknown method", appointment.Payment{Amount: money(100), Method: "cheque", ReceivedBy: f.pro}},
		{"missing receiver", appointment.Payment{Amount: money(100), Method: ledger.MethodCash}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddPayment(ctx, appt.ID, tc.payment)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestAddPayment_CashDepositConfirmsAndPostsMovement(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)
	ctx := context.Background()

	updated, err := f.svc.AddPayment(ctx, appt.ID, appointment.Payment{
		Amount:     money(3000),
		Method:     ledger.MethodCash,
		ReceivedBy: f.pro,
		IsDeposit:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, appointment.StatusConfirmed, updated.Status)
	assert.True(t, updated.DepositAmount.Equal(money(3000)))
	assert.True(t, updated.CashCollected.Equal(money(3000)))
	assert.True(t, updated.IsDepositComplete)
	assert.False(t, updated.IsPaid)

	balance, err := f.registers.Balance(ctx, ledger.ProfessionalOwner(f.pro))
	require.NoError(t, err)
	assert.True(t, balance.Equal(money(3000)))

	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, ledger.TypeDepositPayment, log[0].Type)
	assert.Equal(t, updated.Payments[0].ID, log[0].PaymentID)
	assert.Equal(t, appt.ID, log[0].AppointmentID)
}

func TestAddPayment_TransferBypassesRegisters(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)
	ctx := context.Background()

	updated, err := f.svc.AddPayment(ctx, appt.ID, appointment.Payment{
		Amount:     money(10000),
		Method:     ledger.MethodTransfer,
		ReceivedBy: f.pro,
	})
	require.NoError(t, err)

	assert.True(t, updated.TransferCollected.Equal(money(10000)))
	assert.True(t, updated.IsPaid)
	assert.Equal(t, appointment.StatusConfirmed, updated.Status)

	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, log, "transfers never touch a clinic register")
}

func TestRemovePayment_ExactInverse(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)
	ctx := context.Background()

	updated, err := f.svc.AddPayment(ctx, appt.ID, appointment.Payment{
		Amount:     money(4000),
		Method:     ledger.MethodCash,
		ReceivedBy: f.pro,
		IsDeposit:  true,
	})
	require.NoError(t, err)
	paymentID := updated.Payments[0].ID

	reverted, err := f.svc.RemovePayment(ctx, appt.ID, paymentID)
	require.NoError(t, err)

	assert.Empty(t, reverted.Payments)
	assert.True(t, reverted.PaidAmount.IsZero())
	assert.True(t, reverted.CashCollected.IsZero())
	assert.True(t, reverted.DepositAmount.IsZero())
	assert.Equal(t, appointment.StatusPendingDeposit, reverted.Status)

	balance, err := f.registers.Balance(ctx, ledger.ProfessionalOwner(f.pro))
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "register movement must be retracted, got %s", balance)

	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestRemovePayment_UnknownPayment(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)

	_, err := f.svc.RemovePayment(context.Background(), appt.ID, id.New())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestMarkAttended_BlockedOnOutstandingBalance(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)
	ctx := context.Background()

	_, err := f.svc.AddPayment(ctx, appt.ID, appointment.Payment{
		Amount:     money(3000),
		Method:     ledger.MethodCash,
		ReceivedBy: f.pro,
		IsDeposit:  true,
	})
	require.NoError(t, err)

	_, err = f.svc.MarkAttended(ctx, appt.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeOutstandingBalance, appErr.Code)

	_, err = f.svc.AddPayment(ctx, appt.ID, appointment.Payment{
		Amount:     money(7000),
		Method:     ledger.MethodTransfer,
		ReceivedBy: f.pro,
	})
	require.NoError(t, err)

	updated, err := f.svc.MarkAttended(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusAttended, updated.Status)
}

func TestMarkNoShow_KeepsDepositForSettlement(t *testing.T) {
	f := newFixture(t)
	appt := f.newAppointment(t)
	ctx := context.Background()

	_, err := f.svc.AddPayment(ctx, appt.ID, appointment.Payment{
		Amount:     money(3000),
		Method:     ledger.MethodCash,
		ReceivedBy: f.pro,
		IsDeposit:  true,
	})
	require.NoError(t, err)

	updated, err := f.svc.MarkNoShow(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusNoShow, updated.Status)
	assert.True(t, updated.DepositAmount.Equal(money(3000)))
}
