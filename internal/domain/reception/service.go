package reception

import (
	"context"
	"fmt"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/tx"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/ledger"
	"clinicash/pkg/logger"
)

// Service performs the daily and monthly reception closes.
type Service struct {
	repo      Repository
	registers *ledger.Service
	txManager tx.Manager
}

// NewService creates a new reception close service.
func NewService(repo Repository, registers *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		registers: registers,
		txManager: txManager,
	}
}

// CloseDaily snapshots today's product-sale totals by payment method.
// A second close for the same date is rejected with a duplicate-period
// error; the legacy null return was too easy to read as "no data".
func (s *Service) CloseDaily(ctx context.Context, userID id.ID) (*DailyClose, error) {
	now := time.Now().UTC()
	period := types.DayPeriod(now)

	var result *DailyClose
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.FindDailyByDate(ctx, period.From); err == nil && existing != nil {
			return apperror.NewDuplicatePeriod("daily close", period.String())
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		owner := ledger.ReceptionOwner()
		saleType := ledger.TypeProductSale
		sales, err := s.registers.ListTransactions(ctx, ledger.TransactionFilter{
			Owner: &owner,
			Type:  &saleType,
			From:  &period.From,
			To:    &period.To,
		})
		if err != nil {
			return fmt.Errorf("load product sales: %w", err)
		}

		cash := types.Zero()
		transfer := types.Zero()
		for _, t := range sales {
			switch t.Method {
			case ledger.MethodCash:
				cash = cash.Add(t.Amount)
			case ledger.MethodTransfer:
				transfer = transfer.Add(t.Amount)
			}
		}

		result = &DailyClose{
			ID:             id.New(),
			Date:           period.From,
			CashSales:      cash,
			TransferSales:  transfer,
			OperationCount: len(sales),
			ClosedBy:       userID,
			CreatedAt:      now,
		}
		if err := s.repo.CreateDaily(ctx, result); err != nil {
			return fmt.Errorf("create daily close: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reception daily close",
		"date", period.String(),
		"operations", result.OperationCount,
		"cash", result.CashSales.String(),
	)
	return result, nil
}

// CloseMonthly sweeps the excess above the fixed fund from the reception
// register to the administrator register.
//
// This is the one place in the system that balances a transfer manually
// across two registers: the pair of movements must land together or not at
// all. Whether today is actually the last day of the month is the caller's
// policy, not checked here.
func (s *Service) CloseMonthly(ctx context.Context, userID id.ID, fixedFund types.Money) (*MonthlyClose, error) {
	if fixedFund.IsNegative() {
		return nil, apperror.NewValidation("fixed fund cannot be negative").
			WithDetail("field", "fixedFund")
	}

	now := time.Now().UTC()
	month, year := now.Month(), now.Year()
	period := types.MonthPeriod(month, year)

	var result *MonthlyClose
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.FindMonthly(ctx, month, year); err == nil && existing != nil {
			return apperror.NewDuplicatePeriod("monthly close", period.String())
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		balance, err := s.registers.Balance(ctx, ledger.ReceptionOwner())
		if err != nil {
			return err
		}

		excess := types.MaxMoney(balance.Sub(fixedFund), types.Zero())
		if excess.IsPositive() {
			note := fmt.Sprintf("monthly excess sweep %s", period)
			out := ledger.Transaction{
				ID:           id.New(),
				Date:         now,
				Type:         ledger.TypeMonthlyExcessTransfer,
				Amount:       excess.Neg(),
				Method:       ledger.MethodCash,
				RegisterType: ledger.RegisterReception,
				Notes:        note,
			}
			in := ledger.Transaction{
				ID:           id.New(),
				Date:         now,
				Type:         ledger.TypeMonthlyExcessTransfer,
				Amount:       excess,
				Method:       ledger.MethodCash,
				RegisterType: ledger.RegisterAdministrator,
				Notes:        note,
			}
			if err := s.registers.PostTransaction(ctx, out); err != nil {
				return err
			}
			if err := s.registers.PostTransaction(ctx, in); err != nil {
				return err
			}
		}

		result = &MonthlyClose{
			ID:            id.New(),
			Month:         month,
			Year:          year,
			BalanceBefore: balance,
			FixedFund:     fixedFund,
			Excess:        excess,
			ClosedBy:      userID,
			CreatedAt:     now,
		}
		if err := s.repo.CreateMonthly(ctx, result); err != nil {
			return fmt.Errorf("create monthly close: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reception monthly close",
		"period", period.String(),
		"excess", result.Excess.String(),
	)
	return result, nil
}

// ListDaily returns recent daily closes.
func (s *Service) ListDaily(ctx context.Context, limit int) ([]*DailyClose, error) {
	return s.repo.ListDaily(ctx, limit)
}

// ListMonthly returns recent monthly closes.
func (s *Service) ListMonthly(ctx context.Context, limit int) ([]*MonthlyClose, error) {
	return s.repo.ListMonthly(ctx, limit)
}
