package reception_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/domain/reception"
	"clinicash/internal/storage/memory"
)

func money(v int64) types.Money { return types.MoneyFromInt(v) }

type fixture struct {
	svc       *reception.Service
	registers *ledger.Service
	userID    id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	registers := ledger.NewService(store.Ledger(), store.Professionals(), txm)
	return &fixture{
		svc:       reception.NewService(store.Reception(), registers, txm),
		registers: registers,
		userID:    id.New(),
	}
}

func (f *fixture) postSale(t *testing.T, amount int64, method ledger.PaymentMethod) {
	t.Helper()
	require.NoError(t, f.registers.PostTransaction(context.Background(), ledger.Transaction{
		Type:         ledger.TypeProductSale,
		Amount:       money(amount),
		Method:       method,
		RegisterType: ledger.RegisterReception,
	}))
}

func TestCloseDaily_SnapshotsProductSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.postSale(t, 3000, ledger.MethodCash)
	f.postSale(t, 2000, ledger.MethodCash)
	f.postSale(t, 8000, ledger.MethodTransfer)

	// Non-sale movements stay out of the snapshot.
	require.NoError(t, f.registers.PostTransaction(ctx, ledger.Transaction{
		Type:         ledger.TypeExpense,
		Amount:       money(-700),
		Method:       ledger.MethodCash,
		RegisterType: ledger.RegisterReception,
	}))

	close, err := f.svc.CloseDaily(ctx, f.userID)
	require.NoError(t, err)

	assert.True(t, close.CashSales.Equal(money(5000)))
	assert.True(t, close.TransferSales.Equal(money(8000)))
	assert.Equal(t, 3, close.OperationCount)
	assert.Equal(t, f.userID, close.ClosedBy)

	_, err = f.svc.CloseDaily(ctx, f.userID)
	assert.True(t, apperror.IsDuplicatePeriod(err), "got %v", err)

	closes, err := f.svc.ListDaily(ctx, 10)
	require.NoError(t, err)
	require.Len(t, closes, 1)
}

func TestCloseMonthly_SweepsExcessToAdministrator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.registers.OpenRegister(ctx, ledger.ReceptionOwner(), types.Zero()))
	f.postSale(t, 12000, ledger.MethodCash)

	close, err := f.svc.CloseMonthly(ctx, f.userID, money(5000))
	require.NoError(t, err)

	assert.True(t, close.BalanceBefore.Equal(money(12000)))
	assert.True(t, close.FixedFund.Equal(money(5000)))
	assert.True(t, close.Excess.Equal(money(7000)))

	// The sweep is a balanced pair: reception keeps exactly the fund and
	// the administrator register gains the excess.
	receptionBalance, err := f.registers.Balance(ctx, ledger.ReceptionOwner())
	require.NoError(t, err)
	assert.True(t, receptionBalance.Equal(money(5000)))

	adminBalance, err := f.registers.Balance(ctx, ledger.AdministratorOwner())
	require.NoError(t, err)
	assert.True(t, adminBalance.Equal(money(7000)))

	sweepType := ledger.TypeMonthlyExcessTransfer
	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{Type: &sweepType})
	require.NoError(t, err)
	assert.Len(t, log, 2)

	_, err = f.svc.CloseMonthly(ctx, f.userID, money(5000))
	assert.True(t, apperror.IsDuplicatePeriod(err), "got %v", err)
}

func TestCloseMonthly_BalanceBelowFundMovesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.registers.OpenRegister(ctx, ledger.ReceptionOwner(), money(3000)))

	close, err := f.svc.CloseMonthly(ctx, f.userID, money(5000))
	require.NoError(t, err)
	assert.True(t, close.Excess.IsZero())

	log, err := f.registers.ListTransactions(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, log, "no sweep below the fund")
}

func TestCloseMonthly_NegativeFixedFundRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CloseMonthly(context.Background(), f.userID, money(-1))
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}
