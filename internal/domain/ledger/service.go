package ledger

import (
	"context"
	"fmt"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/tx"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/pkg/logger"
)

// Service provides register lifecycle and transaction posting operations.
type Service struct {
	repo          Repository
	professionals professional.Repository
	txManager     tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, professionals professional.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:          repo,
		professionals: professionals,
		txManager:     txManager,
	}
}

// ProvisionRegister creates the register for an owner if it does not exist yet.
// Registers are provisioned once and never deleted.
func (s *Service) ProvisionRegister(ctx context.Context, owner OwnerKey) (*CashRegister, error) {
	reg, err := s.repo.GetRegister(ctx, owner)
	if err == nil {
		return reg, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	reg = NewRegister(owner)
	if err := s.repo.SaveRegister(ctx, reg); err != nil {
		return nil, fmt.Errorf("provision register %s: %w", owner, err)
	}
	return reg, nil
}

// OpenRegister opens the owner's register with the given opening balance.
// Opening an already-open register overwrites its state; that quirk is kept
// from the original front-desk workflow and is the caller's to guard.
func (s *Service) OpenRegister(ctx context.Context, owner OwnerKey, openingBalance types.Money) error {
	if openingBalance.IsNegative() {
		return apperror.NewValidation("opening balance cannot be negative").
			WithDetail("owner", owner.String())
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		reg, err := s.ProvisionRegister(ctx, owner)
		if err != nil {
			return err
		}

		reg.Open(openingBalance)
		if err := s.repo.SaveRegister(ctx, reg); err != nil {
			return fmt.Errorf("save register: %w", err)
		}

		logger.Info(ctx, "register opened",
			"owner", owner.String(),
			"opening_balance", openingBalance.String(),
		)
		return nil
	})
}

// SetFixedFund records the reception float to keep across monthly closes.
func (s *Service) SetFixedFund(ctx context.Context, amount types.Money) error {
	if amount.IsNegative() {
		return apperror.NewValidation("fixed fund cannot be negative")
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		reg, err := s.ProvisionRegister(ctx, ReceptionOwner())
		if err != nil {
			return err
		}
		reg.FixedFund = amount
		return s.repo.SaveRegister(ctx, reg)
	})
}

// PostTransaction validates and appends a transaction to its owning register
// and the flat log.
//
// A professional-scoped transaction without a professional id used to vanish
// silently in the legacy flow (it matched no register). That is rejected here.
func (s *Service) PostTransaction(ctx context.Context, t Transaction) error {
	if err := s.validateTransaction(&t); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// First movement for an owner provisions its register. Posting does
		// not require the register to be open: payments keep arriving while
		// the professional's drawer is closed, and the next open resets the
		// movement slice anyway.
		if _, err := s.ProvisionRegister(ctx, t.Owner()); err != nil {
			return err
		}

		if err := s.repo.AppendTransaction(ctx, t); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		logger.Info(ctx, "transaction posted",
			"id", t.ID,
			"type", string(t.Type),
			"owner", t.Owner().String(),
			"amount", t.Amount.String(),
		)
		return nil
	})
}

func (s *Service) validateTransaction(t *Transaction) error {
	if id.IsNil(t.ID) {
		t.ID = id.New()
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	switch t.RegisterType {
	case RegisterReception, RegisterAdministrator:
	case RegisterProfessional:
		if id.IsNil(t.ProfessionalID) {
			return apperror.NewValidation("professional transaction requires a professional id").
				WithDetail("field", "professionalId").
				WithDetail("type", string(t.Type))
		}
	default:
		return apperror.NewValidation("unknown register type").
			WithDetail("field", "registerType").
			WithDetail("value", string(t.RegisterType))
	}

	if t.Amount.IsZero() {
		return apperror.NewValidation("transaction amount cannot be zero").
			WithDetail("field", "amount")
	}

	switch t.Method {
	case MethodCash, MethodTransfer:
	default:
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "method").
			WithDetail("value", string(t.Method))
	}

	return nil
}

// CloseRegister closes the owner's register.
//
// Professional registers with a positive balance synthesize a withdrawal of
// the full balance and credit the professional's cash-in-hand accumulator:
// the professional physically takes the cash home. Reception and
// administrator registers only freeze the closing balance.
func (s *Service) CloseRegister(ctx context.Context, owner OwnerKey) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		reg, err := s.repo.GetRegister(ctx, owner)
		if err != nil {
			return err
		}
		if reg.Status == StatusClosed {
			// A second close would re-run the withdrawal and double-credit
			// cash in hand.
			return apperror.NewBusinessRule(apperror.CodeRegisterClosed,
				"register is already closed").
				WithDetail("owner", owner.String())
		}

		balance := reg.Balance()

		if owner.Type == RegisterProfessional && balance.IsPositive() {
			withdrawal := Transaction{
				ID:             id.New(),
				Date:           time.Now().UTC(),
				Type:           TypeProfessionalWithdrawal,
				Amount:         balance.Neg(),
				Method:         MethodCash,
				RegisterType:   RegisterProfessional,
				ProfessionalID: owner.ProfessionalID,
				Notes:          "register close withdrawal",
				CreatedAt:      time.Now().UTC(),
			}
			if err := s.repo.AppendTransaction(ctx, withdrawal); err != nil {
				return fmt.Errorf("append withdrawal: %w", err)
			}
			if err := s.professionals.CreditCashInHand(ctx, owner.ProfessionalID, balance); err != nil {
				return fmt.Errorf("credit cash in hand: %w", err)
			}
			reg, err = s.repo.GetRegister(ctx, owner)
			if err != nil {
				return err
			}
		} else {
			closing := balance
			reg.ClosingBalance = &closing
		}

		now := time.Now().UTC()
		reg.Status = StatusClosed
		reg.ClosedAt = &now
		if err := s.repo.SaveRegister(ctx, reg); err != nil {
			return fmt.Errorf("save register: %w", err)
		}

		logger.Info(ctx, "register closed",
			"owner", owner.String(),
			"balance", balance.String(),
		)
		return nil
	})
}

// Balance returns the current balance for an owner's register.
func (s *Service) Balance(ctx context.Context, owner OwnerKey) (types.Money, error) {
	reg, err := s.repo.GetRegister(ctx, owner)
	if err != nil {
		return types.Zero(), err
	}
	return reg.Balance(), nil
}

// GetRegister returns the register for an owner.
func (s *Service) GetRegister(ctx context.Context, owner OwnerKey) (*CashRegister, error) {
	return s.repo.GetRegister(ctx, owner)
}

// ListRegisters returns all provisioned registers.
func (s *Service) ListRegisters(ctx context.Context) ([]*CashRegister, error) {
	return s.repo.ListRegisters(ctx)
}

// ListTransactions queries the flat transaction log.
func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// RemoveBySettlement drops every transaction tagged with a settlement id.
// Used when a settlement is deleted to revert its cash movements.
func (s *Service) RemoveBySettlement(ctx context.Context, settlementID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.repo.DeleteBySettlement(ctx, settlementID)
		if err != nil {
			return fmt.Errorf("delete by settlement: %w", err)
		}
		if removed > 0 {
			logger.Info(ctx, "settlement transactions reverted",
				"settlement_id", settlementID,
				"count", removed,
			)
		}
		return nil
	})
}

// RemoveByPayment drops the register-side transaction tied to an appointment
// payment. Used when a payment is removed from an appointment.
func (s *Service) RemoveByPayment(ctx context.Context, paymentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.DeleteByPayment(ctx, paymentID); err != nil {
			return fmt.Errorf("delete by payment: %w", err)
		}
		return nil
	})
}
