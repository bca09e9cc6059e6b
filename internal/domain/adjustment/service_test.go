package adjustment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/adjustment"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/storage/memory"
)

func money(v int64) types.Money { return types.MoneyFromInt(v) }

type fixture struct {
	svc   *adjustment.Service
	store *memory.Store

	proA, proB, proC id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		svc:   adjustment.NewService(store.Adjustments(), store.Appointments(), memory.NewTxManager(store)),
		store: store,
		proA:  id.New(),
		proB:  id.New(),
		proC:  id.New(),
	}
}

// reassignedAppointment books a session with proA and records payments taken
// by proA (1000) and proB (3000 + 2000).
func (f *fixture) reassignedAppointment(t *testing.T) *appointment.Appointment {
	t.Helper()
	date := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	appt := appointment.New(id.New(), f.proA, id.New(), date, money(10000), types.Zero(), money(3000))
	appt.Payments = []appointment.Payment{
		{ID: id.New(), Amount: money(1000), Method: ledger.MethodCash, ReceivedBy: f.proA, PaymentDate: date},
		{ID: id.New(), Amount: money(3000), Method: ledger.MethodCash, ReceivedBy: f.proB, PaymentDate: date},
		{ID: id.New(), Amount: money(2000), Method: ledger.MethodTransfer, ReceivedBy: f.proB, PaymentDate: date},
	}
	appt.Recalculate()
	require.NoError(t, f.store.Appointments().Create(context.Background(), appt))
	return appt
}

func byPayer(adjs []*adjustment.Adjustment) map[id.ID]*adjustment.Adjustment {
	m := make(map[id.ID]*adjustment.Adjustment, len(adjs))
	for _, a := range adjs {
		m[a.FromProfessionalID] = a
	}
	return m
}

func TestHandleReassignment_OneAdjustmentPerForeignPayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.reassignedAppointment(t)

	created, err := f.svc.HandleReassignment(ctx, appt.ID, f.proC, adjustment.ModeManualTransfer, "hand over in person")
	require.NoError(t, err)
	require.Len(t, created, 2)

	adjs := byPayer(created)

	// proA's own payment became foreign once the appointment moved.
	require.Contains(t, adjs, f.proA)
	assert.True(t, adjs[f.proA].Amount.Equal(money(1000)))
	assert.Len(t, adjs[f.proA].SourcePaymentIDs, 1)

	require.Contains(t, adjs, f.proB)
	assert.True(t, adjs[f.proB].Amount.Equal(money(5000)), "both of proB's payments fold into one debt")
	assert.Len(t, adjs[f.proB].SourcePaymentIDs, 2)

	for _, adj := range created {
		assert.Equal(t, f.proC, adj.ToProfessionalID)
		assert.Equal(t, adjustment.StatePending, adj.State)
		require.NotNil(t, adj.DueDate)

		task, err := f.store.Adjustments().GetTaskByAdjustment(ctx, adj.ID)
		require.NoError(t, err)
		assert.Equal(t, adj.FromProfessionalID, task.AssignedTo)
		assert.False(t, task.Done)
	}

	updated, err := f.store.Appointments().GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, f.proC, updated.ProfessionalID)
	assert.Equal(t, appointment.ResolutionPending, updated.PaymentResolutionStatus)
}

func TestHandleReassignment_NettingAutoResolves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.reassignedAppointment(t)

	created, err := f.svc.HandleReassignment(ctx, appt.ID, f.proC, adjustment.ModeNetAtSettlement, "")
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, adj := range created {
		assert.Equal(t, adjustment.StateResolved, adj.State)
		assert.True(t, adj.AutoResolved)
		assert.NotNil(t, adj.ResolvedAt)

		_, err := f.store.Adjustments().GetTaskByAdjustment(ctx, adj.ID)
		assert.True(t, apperror.IsNotFound(err), "netting creates no task, got %v", err)
	}

	updated, err := f.store.Appointments().GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ResolutionOK, updated.PaymentResolutionStatus)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleReassignment_NoForeignPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	appt := appointment.New(id.New(), f.proA, id.New(), date, money(10000), types.Zero(), money(3000))
	require.NoError(t, f.store.Appointments().Create(ctx, appt))

	created, err := f.svc.HandleReassignment(ctx, appt.ID, f.proC, adjustment.ModeManualTransfer, "n/a")
	require.NoError(t, err)
	assert.Empty(t, created)

	updated, err := f.store.Appointments().GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, f.proC, updated.ProfessionalID)
	assert.Equal(t, appointment.ResolutionOK, updated.PaymentResolutionStatus)
}

func TestHandleReassignment_InvalidParamsLeaveStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.reassignedAppointment(t)

	cases := []struct {
		name  string
		mode  adjustment.Mode
		notes string
	}{
		{"manual transfer without notes", adjustment.ModeManualTransfer, ""},
		{"unknown mode", "split", "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.HandleReassignment(ctx, appt.ID, f.proC, tc.mode, tc.notes)
			assert.True(t, apperror.IsValidation(err), "got %v", err)

			unchanged, err := f.store.Appointments().GetByID(ctx, appt.ID)
			require.NoError(t, err)
			assert.Equal(t, f.proA, unchanged.ProfessionalID, "failed reassignment must not move the appointment")
			assert.Equal(t, appointment.ResolutionOK, unchanged.PaymentResolutionStatus)

			adjs, err := f.svc.ListByAppointment(ctx, appt.ID)
			require.NoError(t, err)
			assert.Empty(t, adjs, "rejected reassignment must not create adjustments")
		})
	}
}

func TestHandleReassignment_SameProfessionalRejected(t *testing.T) {
	f := newFixture(t)
	appt := f.reassignedAppointment(t)

	_, err := f.svc.HandleReassignment(context.Background(), appt.ID, f.proA, adjustment.ModeManualTransfer, "x")
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestCreate_Validations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.reassignedAppointment(t)

	base := adjustment.CreateParams{
		AppointmentID:      appt.ID,
		FromProfessionalID: f.proB,
		ToProfessionalID:   f.proC,
		Amount:             money(5000),
		Mode:               adjustment.ModeManualTransfer,
		Notes:              "ok",
	}

	cases := []struct {
		name   string
		mutate func(*adjustment.CreateParams)
	}{
		{"zero amount", func(p *adjustment.CreateParams) { p.Amount = types.Zero() }},
		{"same professional", func(p *adjustment.CreateParams) { p.ToProfessionalID = p.FromProfessionalID }},
		{"unknown mode", func(p *adjustment.CreateParams) { p.Mode = "split" }},
		{"manual without notes", func(p *adjustment.CreateParams) { p.Notes = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := base
			tc.mutate(&params)
			_, err := f.svc.Create(ctx, params)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestManualResolutionFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.reassignedAppointment(t)

	created, err := f.svc.HandleReassignment(ctx, appt.ID, f.proC, adjustment.ModeManualTransfer, "cash hand-over")
	require.NoError(t, err)
	require.Len(t, created, 2)
	first, second := created[0], created[1]

	// Confirming before the hand-over is reported is rejected.
	err = f.svc.ConfirmResolution(ctx, first.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeAdjustmentState, appErr.Code)

	require.NoError(t, f.svc.MarkDone(ctx, first.ID, "https://evidence.example/123"))

	got, err := f.svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, adjustment.StateWaitingValidation, got.State)
	assert.Equal(t, "https://evidence.example/123", got.EvidenceURL)

	task, err := f.store.Adjustments().GetTaskByAdjustment(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, task.Done)
	assert.NotNil(t, task.CompletedAt)

	err = f.svc.MarkDone(ctx, first.ID, "again")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeAdjustmentState, appErr.Code)

	// One resolved adjustment is not enough: the appointment stays pending
	// until every debt is settled.
	require.NoError(t, f.svc.ConfirmResolution(ctx, first.ID))
	midway, err := f.store.Appointments().GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ResolutionPending, midway.PaymentResolutionStatus)

	require.NoError(t, f.svc.MarkDone(ctx, second.ID, ""))
	require.NoError(t, f.svc.ConfirmResolution(ctx, second.ID))

	final, err := f.store.Appointments().GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ResolutionOK, final.PaymentResolutionStatus)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := f.svc.ListByAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
