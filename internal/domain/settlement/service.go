package settlement

import (
	"context"
	"fmt"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/tx"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/domain/ledger"
	"clinicash/pkg/logger"
)

// Service generates, confirms and deletes settlements.
type Service struct {
	repo          Repository
	appointments  appointment.Repository
	professionals professional.Repository
	treatments    treatment.Repository
	registers     *ledger.Service
	txManager     tx.Manager
}

// NewService creates a new settlement service.
func NewService(
	repo Repository,
	appointments appointment.Repository,
	professionals professional.Repository,
	treatments treatment.Repository,
	registers *ledger.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		appointments:  appointments,
		professionals: professionals,
		treatments:    treatments,
		registers:     registers,
		txManager:     txManager,
	}
}

// GenerateDaily computes and persists the daily settlement for one
// professional and calendar date.
//
// A second settlement for the same professional+date is rejected: correcting
// one means deleting it first and regenerating, so stale figures can never
// coexist with fresh ones.
func (s *Service) GenerateDaily(ctx context.Context, professionalID id.ID, date time.Time) (*Daily, error) {
	period := types.DayPeriod(date)

	var result *Daily
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.FindDaily(ctx, professionalID, period.From); err == nil && existing != nil {
			return apperror.NewDuplicatePeriod("daily settlement", period.String()).
				WithDetail("professional_id", professionalID)
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		figures, err := s.compute(ctx, professionalID, period)
		if err != nil {
			return err
		}

		result = &Daily{
			Base: Base{
				ID:             id.New(),
				ProfessionalID: professionalID,
				Status:         StatusPending,
				Figures:        figures,
				Payments:       make([]Payment, 0),
				GeneratedAt:    time.Now().UTC(),
			},
			Date: period.From,
		}
		if err := s.repo.CreateDaily(ctx, result); err != nil {
			return fmt.Errorf("create daily settlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "daily settlement generated",
		"id", result.ID,
		"professional_id", professionalID,
		"date", period.String(),
		"amount_to_settle", result.AmountToSettle.String(),
	)
	return result, nil
}

// GenerateMonthly computes and persists the monthly settlement for one
// professional and month. No-show deposit compensation accrues into the
// professional's earnings here; daily settlements only report it.
func (s *Service) GenerateMonthly(ctx context.Context, professionalID id.ID, month time.Month, year int) (*Monthly, error) {
	period := types.MonthPeriod(month, year)

	var result *Monthly
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.FindMonthly(ctx, professionalID, month, year); err == nil && existing != nil {
			return apperror.NewDuplicatePeriod("monthly settlement", period.String()).
				WithDetail("professional_id", professionalID)
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		figures, err := s.compute(ctx, professionalID, period)
		if err != nil {
			return err
		}

		result = &Monthly{
			Base: Base{
				ID:             id.New(),
				ProfessionalID: professionalID,
				Status:         StatusPending,
				Figures:        figures,
				Payments:       make([]Payment, 0),
				GeneratedAt:    time.Now().UTC(),
			},
			Month:                      month,
			Year:                       year,
			ProfessionalEarningsNoShow: figures.NoShowDepositsLost,
			TotalProfessionalEarnings:  figures.ProfessionalEarnings.Add(figures.NoShowDepositsLost),
		}
		if err := s.repo.CreateMonthly(ctx, result); err != nil {
			return fmt.Errorf("create monthly settlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "monthly settlement generated",
		"id", result.ID,
		"professional_id", professionalID,
		"period", period.String(),
		"amount_to_settle", result.AmountToSettle.String(),
	)
	return result, nil
}

// compute loads the snapshot and runs the calculator. Runs inside the
// caller's transaction so the snapshot is consistent for the whole
// computation.
func (s *Service) compute(ctx context.Context, professionalID id.ID, period types.Period) (Figures, error) {
	pro, err := s.professionals.GetByID(ctx, professionalID)
	if err != nil {
		return Figures{}, err
	}

	appts, err := s.appointments.ListForSettlement(ctx, professionalID, period.From, period.To)
	if err != nil {
		return Figures{}, fmt.Errorf("load settlement snapshot: %w", err)
	}

	treatments, err := s.treatments.List(ctx)
	if err != nil {
		return Figures{}, fmt.Errorf("load treatments: %w", err)
	}
	caps := make(map[id.ID]types.Money, len(treatments))
	for _, t := range treatments {
		caps[t.ID] = t.MaxDeposit
	}

	return Compute(Input{
		ProfessionalID: professionalID,
		Period:         period,
		ClinicRate:     pro.CommissionRate,
		Appointments:   appts,
		DepositCaps:    caps,
	}), nil
}

// Get resolves a settlement by id.
func (s *Service) Get(ctx context.Context, settlementID id.ID) (Settlement, error) {
	return s.repo.Get(ctx, settlementID)
}

// ListByProfessional returns a professional's settlements, newest first.
func (s *Service) ListByProfessional(ctx context.Context, professionalID id.ID) ([]Settlement, error) {
	return s.repo.ListByProfessional(ctx, professionalID)
}

// Confirm finalizes a settlement.
//
// Daily settlements are informational: confirming one records the review and
// moves no cash. Confirming a monthly settlement posts the commission
// transfer to the administrator register and marks the settlement paid.
func (s *Service) Confirm(ctx context.Context, settlementID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stl, err := s.repo.Get(ctx, settlementID)
		if err != nil {
			return err
		}

		base := stl.GetBase()
		if base.Status != StatusPending {
			// Covers paid monthlies and already-reviewed dailies alike; a
			// second confirm would re-stamp ConfirmedAt.
			return apperror.NewBusinessRule(apperror.CodeSettlementConfirmed,
				"settlement is already confirmed").
				WithDetail("settlement_id", settlementID)
		}

		now := time.Now().UTC()
		switch stl.GetKind() {
		case KindDaily:
			base.Status = StatusReviewed
			base.ConfirmedAt = &now
		case KindMonthly:
			if base.AmountToSettle.IsPositive() {
				transfer := ledger.Transaction{
					ID:             id.New(),
					Date:           now,
					Type:           ledger.TypeSettlementTransfer,
					Amount:         base.AmountToSettle,
					Method:         ledger.MethodCash,
					RegisterType:   ledger.RegisterAdministrator,
					ProfessionalID: base.ProfessionalID,
					SettlementID:   settlementID,
					Notes:          fmt.Sprintf("settlement %s", stl.Period()),
				}
				if err := s.registers.PostTransaction(ctx, transfer); err != nil {
					return err
				}
			}
			base.Status = StatusPaid
			base.ConfirmedAt = &now
		}

		if err := s.repo.Update(ctx, stl); err != nil {
			return fmt.Errorf("update settlement: %w", err)
		}

		logger.Info(ctx, "settlement confirmed",
			"id", settlementID,
			"kind", string(stl.GetKind()),
			"status", string(base.Status),
		)
		return nil
	})
}

// RecordPayment appends a partial payment against the settlement amount.
func (s *Service) RecordPayment(ctx context.Context, settlementID id.ID, payment Payment) error {
	if !payment.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	if id.IsNil(payment.ID) {
		payment.ID = id.New()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stl, err := s.repo.Get(ctx, settlementID)
		if err != nil {
			return err
		}

		base := stl.GetBase()
		base.Payments = append(base.Payments, payment)
		return s.repo.Update(ctx, stl)
	})
}

// Delete removes a settlement and reverts every transaction tagged with its
// id, in the flat log and in every register. Deleting and regenerating is
// the only supported way to correct a settlement.
func (s *Service) Delete(ctx context.Context, settlementID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Get(ctx, settlementID); err != nil {
			return err
		}

		if err := s.registers.RemoveBySettlement(ctx, settlementID); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, settlementID); err != nil {
			return fmt.Errorf("delete settlement: %w", err)
		}

		logger.Info(ctx, "settlement deleted", "id", settlementID)
		return nil
	})
}
