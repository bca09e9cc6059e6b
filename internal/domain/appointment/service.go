package appointment

import (
	"context"
	"fmt"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/tx"
	"clinicash/internal/domain/ledger"
	"clinicash/pkg/logger"
)

// Service provides the payment operations on appointment financial state.
type Service struct {
	repo      Repository
	registers *ledger.Service
	txManager tx.Manager
}

// NewService creates a new appointment service.
func NewService(repo Repository, registers *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		registers: registers,
		txManager: txManager,
	}
}

// Create persists a new appointment.
func (s *Service) Create(ctx context.Context, appt *Appointment) error {
	if err := appt.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
}

// GetByID returns an appointment with payments loaded.
func (s *Service) GetByID(ctx context.Context, apptID id.ID) (*Appointment, error) {
	return s.repo.GetByID(ctx, apptID)
}

// List queries appointments.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	return s.repo.List(ctx, filter)
}

// AddPayment appends a payment to the appointment, re-derives the aggregate
// fields and posts the matching register movement.
//
// Cash goes to the receiving professional's register. Transfers bypass the
// clinic's registers entirely; the money lands in the professional's bank
// account and only the appointment totals record it.
func (s *Service) AddPayment(ctx context.Context, apptID id.ID, payment Payment) (*Appointment, error) {
	if !payment.Amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", payment.Amount.String())
	}
	switch payment.Method {
	case ledger.MethodCash, ledger.MethodTransfer:
	default:
		return nil, apperror.NewValidation("unknown payment method").
			WithDetail("field", "method")
	}
	if id.IsNil(payment.ReceivedBy) {
		return nil, apperror.NewValidation("receiving professional is required").
			WithDetail("field", "receivedBy")
	}

	if id.IsNil(payment.ID) {
		payment.ID = id.New()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}

	var appt *Appointment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.repo.GetByID(ctx, apptID)
		if err != nil {
			return err
		}

		appt.Payments = append(appt.Payments, payment)
		appt.Recalculate()

		// Deposit or full payment lifts the appointment out of
		// pending-deposit.
		if appt.Status == StatusPendingDeposit && (appt.IsDepositComplete || appt.IsPaid) {
			appt.Status = StatusConfirmed
		}

		if err := s.repo.Update(ctx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		if payment.Method == ledger.MethodCash {
			txType := ledger.TypeSessionPayment
			if payment.IsDeposit {
				txType = ledger.TypeDepositPayment
			}
			movement := ledger.Transaction{
				ID:             id.New(),
				Date:           payment.PaymentDate,
				Type:           txType,
				Amount:         payment.Amount,
				Method:         ledger.MethodCash,
				RegisterType:   ledger.RegisterProfessional,
				ProfessionalID: payment.ReceivedBy,
				AppointmentID:  appt.ID,
				PaymentID:      payment.ID,
				ClientID:       appt.ClientID,
				Notes:          payment.Notes,
			}
			if err := s.registers.PostTransaction(ctx, movement); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment added",
		"appointment_id", apptID,
		"payment_id", payment.ID,
		"amount", payment.Amount.String(),
		"method", string(payment.Method),
	)
	return appt, nil
}

// RemovePayment removes a payment, reverses the aggregate arithmetic and
// retracts the register movement tied to it. The exact inverse of AddPayment.
func (s *Service) RemovePayment(ctx context.Context, apptID, paymentID id.ID) (*Appointment, error) {
	var appt *Appointment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.repo.GetByID(ctx, apptID)
		if err != nil {
			return err
		}

		if appt.FindPayment(paymentID) == nil {
			return apperror.NewNotFound("payment", paymentID)
		}

		kept := appt.Payments[:0]
		for _, p := range appt.Payments {
			if p.ID != paymentID {
				kept = append(kept, p)
			}
		}
		appt.Payments = kept
		appt.Recalculate()

		// A fully unpaid appointment falls back to pending-deposit.
		if appt.PaidAmount.IsZero() && (appt.Status == StatusConfirmed || appt.Status == StatusAttended) {
			appt.Status = StatusPendingDeposit
		}

		if err := s.repo.Update(ctx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		return s.registers.RemoveByPayment(ctx, paymentID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment removed",
		"appointment_id", apptID,
		"payment_id", paymentID,
	)
	return appt, nil
}

// MarkAttended transitions the appointment to attended.
//
// Money owed but marked attended is the one corruption the settlement math
// cannot recover from, so the outstanding-balance guard lives here as well
// as in the booking UI.
func (s *Service) MarkAttended(ctx context.Context, apptID id.ID) (*Appointment, error) {
	var appt *Appointment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.repo.GetByID(ctx, apptID)
		if err != nil {
			return err
		}

		if outstanding := appt.Outstanding(); outstanding.IsPositive() {
			return apperror.NewOutstandingBalance(apptID, outstanding.String())
		}

		appt.Status = StatusAttended
		appt.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// MarkNoShow transitions the appointment to no-show. The deposit already
// paid becomes the professional's capped compensation at settlement time.
func (s *Service) MarkNoShow(ctx context.Context, apptID id.ID) (*Appointment, error) {
	var appt *Appointment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.repo.GetByID(ctx, apptID)
		if err != nil {
			return err
		}
		appt.Status = StatusNoShow
		appt.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}
