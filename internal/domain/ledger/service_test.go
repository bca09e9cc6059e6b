package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/storage/memory"
)

func money(v int64) types.Money { return types.MoneyFromInt(v) }

func newService(t *testing.T) (*ledger.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := ledger.NewService(store.Ledger(), store.Professionals(), memory.NewTxManager(store))
	return svc, store
}

func cashTx(tt ledger.TransactionType, amount int64, owner ledger.OwnerKey) ledger.Transaction {
	return ledger.Transaction{
		Type:           tt,
		Amount:         money(amount),
		Method:         ledger.MethodCash,
		RegisterType:   owner.Type,
		ProfessionalID: owner.ProfessionalID,
	}
}

func TestPostTransaction_AppearsInLogAndRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := ledger.ProfessionalOwner(id.New())

	require.NoError(t, svc.PostTransaction(ctx, cashTx(ledger.TypeSessionPayment, 3000, owner)))

	reg, err := svc.GetRegister(ctx, owner)
	require.NoError(t, err)
	require.Len(t, reg.Transactions, 1)
	assert.True(t, reg.Balance().Equal(money(3000)))

	log, err := svc.ListTransactions(ctx, ledger.TransactionFilter{Owner: &owner})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, reg.Transactions[0].ID, log[0].ID)
}

func TestPostTransaction_ProfessionalRequiresID(t *testing.T) {
	svc, _ := newService(t)

	tx := cashTx(ledger.TypeSessionPayment, 1000, ledger.OwnerKey{Type: ledger.RegisterProfessional})
	err := svc.PostTransaction(context.Background(), tx)
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestPostTransaction_RejectsZeroAmount(t *testing.T) {
	svc, _ := newService(t)

	tx := cashTx(ledger.TypeExpense, 0, ledger.ReceptionOwner())
	err := svc.PostTransaction(context.Background(), tx)
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestOpenRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := ledger.ReceptionOwner()

	err := svc.OpenRegister(ctx, owner, money(-1))
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	require.NoError(t, svc.OpenRegister(ctx, owner, money(2000)))

	reg, err := svc.GetRegister(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusOpen, reg.Status)
	assert.True(t, reg.Balance().Equal(money(2000)))
}

func TestCloseRegister_ProfessionalWithdrawsAndCreditsCashInHand(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	pro := professional.New("Dra. Vargas", types.NewPercent(35))
	require.NoError(t, store.Professionals().Create(ctx, pro))
	owner := ledger.ProfessionalOwner(pro.ID)

	require.NoError(t, svc.OpenRegister(ctx, owner, types.Zero()))
	require.NoError(t, svc.PostTransaction(ctx, cashTx(ledger.TypeSessionPayment, 1500, owner)))
	require.NoError(t, svc.CloseRegister(ctx, owner))

	reg, err := svc.GetRegister(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusClosed, reg.Status)
	assert.True(t, reg.Balance().IsZero(), "withdrawal must zero the register, got %s", reg.Balance())

	updated, err := store.Professionals().GetByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashInHand.Equal(money(1500)))

	wType := ledger.TypeProfessionalWithdrawal
	log, err := svc.ListTransactions(ctx, ledger.TransactionFilter{Type: &wType})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.True(t, log[0].Amount.Equal(money(-1500)))
}

func TestCloseRegister_SecondCloseRejected(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	pro := professional.New("Dr. Pineda", types.NewPercent(40))
	require.NoError(t, store.Professionals().Create(ctx, pro))
	owner := ledger.ProfessionalOwner(pro.ID)

	require.NoError(t, svc.OpenRegister(ctx, owner, types.Zero()))
	require.NoError(t, svc.PostTransaction(ctx, cashTx(ledger.TypeSessionPayment, 800, owner)))
	require.NoError(t, svc.CloseRegister(ctx, owner))

	err := svc.CloseRegister(ctx, owner)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeRegisterClosed, appErr.Code)

	// The double-close must not credit cash in hand twice.
	updated, err := store.Professionals().GetByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashInHand.Equal(money(800)))
}

func TestCloseRegister_ReceptionFreezesClosingBalance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := ledger.ReceptionOwner()

	require.NoError(t, svc.OpenRegister(ctx, owner, money(2000)))
	require.NoError(t, svc.PostTransaction(ctx, cashTx(ledger.TypeProductSale, 500, owner)))
	require.NoError(t, svc.CloseRegister(ctx, owner))

	reg, err := svc.GetRegister(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, reg.ClosingBalance)
	assert.True(t, reg.ClosingBalance.Equal(money(2500)))
	assert.True(t, reg.Balance().Equal(money(2500)), "closing must not move cash")
}

func TestRemoveBySettlement_RevertsBothViews(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := ledger.AdministratorOwner()
	settlementID := id.New()

	tagged := cashTx(ledger.TypeSettlementTransfer, 2500, owner)
	tagged.SettlementID = settlementID
	plain := cashTx(ledger.TypeExpense, -300, owner)

	require.NoError(t, svc.PostTransaction(ctx, tagged))
	require.NoError(t, svc.PostTransaction(ctx, plain))
	require.NoError(t, svc.RemoveBySettlement(ctx, settlementID))

	log, err := svc.ListTransactions(ctx, ledger.TransactionFilter{Owner: &owner})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, ledger.TypeExpense, log[0].Type)

	reg, err := svc.GetRegister(ctx, owner)
	require.NoError(t, err)
	require.Len(t, reg.Transactions, 1)
	assert.True(t, reg.Balance().Equal(money(-300)))
}
