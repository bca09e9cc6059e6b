package adjustment

import (
	"context"
	"fmt"
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/tx"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/appointment"
	"clinicash/pkg/logger"
)

// taskDue is how long the paying professional has to hand the cash over.
const taskDue = 48 * time.Hour

// Service creates and resolves inter-professional adjustments.
type Service struct {
	repo         Repository
	appointments appointment.Repository
	txManager    tx.Manager
}

// NewService creates a new adjustment service.
func NewService(repo Repository, appointments appointment.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		txManager:    txManager,
	}
}

// CreateParams are the inputs for one adjustment.
type CreateParams struct {
	AppointmentID      id.ID
	FromProfessionalID id.ID
	ToProfessionalID   id.ID
	Amount             types.Money
	Mode               Mode
	SourcePaymentIDs   []id.ID
	Notes              string
}

// Create records a debt between two professionals.
//
// Netting mode resolves immediately: the discrepancy is folded into both
// professionals' next settlements, nothing moves now and no task is created.
// Manual transfer mode starts pending with a due-dated task assigned to the
// paying professional.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Adjustment, error) {
	if err := s.validateCreate(params); err != nil {
		return nil, err
	}

	var adj *Adjustment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		appt, err := s.appointments.GetByID(ctx, params.AppointmentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		adj = &Adjustment{
			ID:                 id.New(),
			AppointmentID:      params.AppointmentID,
			FromProfessionalID: params.FromProfessionalID,
			ToProfessionalID:   params.ToProfessionalID,
			Amount:             params.Amount,
			Mode:               params.Mode,
			SourcePaymentIDs:   params.SourcePaymentIDs,
			Notes:              params.Notes,
			CreatedAt:          now,
		}

		switch params.Mode {
		case ModeNetAtSettlement:
			adj.State = StateResolved
			adj.AutoResolved = true
			adj.ResolvedAt = &now
		case ModeManualTransfer:
			adj.State = StatePending
			due := now.Add(taskDue)
			adj.DueDate = &due
		}

		if err := s.repo.Create(ctx, adj); err != nil {
			return fmt.Errorf("create adjustment: %w", err)
		}

		if params.Mode == ModeManualTransfer {
			task := &Task{
				ID:           id.New(),
				AdjustmentID: adj.ID,
				AssignedTo:   params.FromProfessionalID,
				Title:        fmt.Sprintf("Hand over %s collected on reassigned appointment", params.Amount),
				DueDate:      *adj.DueDate,
				CreatedAt:    now,
			}
			if err := s.repo.CreateTask(ctx, task); err != nil {
				return fmt.Errorf("create task: %w", err)
			}
		}

		return s.refreshResolutionStatus(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "adjustment created",
		"id", adj.ID,
		"appointment_id", params.AppointmentID,
		"mode", string(params.Mode),
		"amount", params.Amount.String(),
	)
	return adj, nil
}

func (s *Service) validateCreate(params CreateParams) error {
	if !params.Amount.IsPositive() {
		return apperror.NewValidation("adjustment amount must be positive").
			WithDetail("field", "amount")
	}
	if id.IsNil(params.FromProfessionalID) || id.IsNil(params.ToProfessionalID) {
		return apperror.NewValidation("both professionals are required")
	}
	if params.FromProfessionalID == params.ToProfessionalID {
		return apperror.NewValidation("professionals must differ")
	}
	return validateMode(params.Mode, params.Notes)
}

func validateMode(mode Mode, notes string) error {
	switch mode {
	case ModeNetAtSettlement, ModeManualTransfer:
	default:
		return apperror.NewValidation("unknown adjustment mode").
			WithDetail("field", "mode").
			WithDetail("value", string(mode))
	}
	if mode == ModeManualTransfer && notes == "" {
		return apperror.NewValidation("notes are required for manual transfer adjustments").
			WithDetail("field", "notes")
	}
	return nil
}

// HandleReassignment moves an appointment to a new professional and creates
// one adjustment per foreign payer covering everything they collected.
// Returns the created adjustments (empty when nothing was collected by
// anyone else).
func (s *Service) HandleReassignment(ctx context.Context, apptID, newProfessionalID id.ID, mode Mode, notes string) ([]*Adjustment, error) {
	if id.IsNil(newProfessionalID) {
		return nil, apperror.NewValidation("new professional is required")
	}
	// Mode and notes must hold before the appointment moves: the per-payer
	// Create calls below run after the reassignment is persisted, and a
	// rejection there would strand a reassigned appointment with foreign
	// payments and no adjustments.
	if err := validateMode(mode, notes); err != nil {
		return nil, err
	}

	var created []*Adjustment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		appt, err := s.appointments.GetByID(ctx, apptID)
		if err != nil {
			return err
		}
		if appt.ProfessionalID == newProfessionalID {
			return apperror.NewValidation("appointment is already assigned to this professional")
		}

		appt.ProfessionalID = newProfessionalID
		appt.UpdatedAt = time.Now().UTC()
		if err := s.appointments.Update(ctx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		for payer, payments := range appt.ForeignPayments() {
			amount := types.Zero()
			ids := make([]id.ID, 0, len(payments))
			for _, p := range payments {
				amount = amount.Add(p.Amount)
				ids = append(ids, p.ID)
			}

			adj, err := s.Create(ctx, CreateParams{
				AppointmentID:      apptID,
				FromProfessionalID: payer,
				ToProfessionalID:   newProfessionalID,
				Amount:             amount,
				Mode:               mode,
				SourcePaymentIDs:   ids,
				Notes:              notes,
			})
			if err != nil {
				return err
			}
			created = append(created, adj)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "appointment reassigned",
		"appointment_id", apptID,
		"new_professional_id", newProfessionalID,
		"adjustments", len(created),
	)
	return created, nil
}

// MarkDone records that the paying professional handed the money over.
// Moves the adjustment to reception validation; only reception's
// confirmation resolves it.
func (s *Service) MarkDone(ctx context.Context, adjID id.ID, evidenceURL string) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		adj, err := s.repo.GetByID(ctx, adjID)
		if err != nil {
			return err
		}
		if adj.State != StatePending {
			return apperror.NewBusinessRule(apperror.CodeAdjustmentState,
				"only pending adjustments can be marked done").
				WithDetail("state", string(adj.State))
		}

		adj.State = StateWaitingValidation
		adj.EvidenceURL = evidenceURL
		if err := s.repo.Update(ctx, adj); err != nil {
			return fmt.Errorf("update adjustment: %w", err)
		}

		task, err := s.repo.GetTaskByAdjustment(ctx, adjID)
		if err == nil && task != nil {
			now := time.Now().UTC()
			task.Done = true
			task.CompletedAt = &now
			if err := s.repo.UpdateTask(ctx, task); err != nil {
				return fmt.Errorf("update task: %w", err)
			}
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		return nil
	})
}

// ConfirmResolution validates the hand-over and resolves the adjustment.
// The appointment's payment resolution status flips to ok only when every
// adjustment tied to it is resolved.
func (s *Service) ConfirmResolution(ctx context.Context, adjID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		adj, err := s.repo.GetByID(ctx, adjID)
		if err != nil {
			return err
		}
		if adj.State != StateWaitingValidation {
			return apperror.NewBusinessRule(apperror.CodeAdjustmentState,
				"adjustment is not waiting for validation").
				WithDetail("state", string(adj.State))
		}

		now := time.Now().UTC()
		adj.State = StateResolved
		adj.ResolvedAt = &now
		if err := s.repo.Update(ctx, adj); err != nil {
			return fmt.Errorf("update adjustment: %w", err)
		}

		appt, err := s.appointments.GetByID(ctx, adj.AppointmentID)
		if err != nil {
			return err
		}
		if err := s.refreshResolutionStatus(ctx, appt); err != nil {
			return err
		}

		logger.Info(ctx, "adjustment resolved",
			"id", adjID,
			"appointment_id", adj.AppointmentID,
		)
		return nil
	})
}

// GetByID returns one adjustment.
func (s *Service) GetByID(ctx context.Context, adjID id.ID) (*Adjustment, error) {
	return s.repo.GetByID(ctx, adjID)
}

// ListByAppointment returns an appointment's adjustments.
func (s *Service) ListByAppointment(ctx context.Context, apptID id.ID) ([]*Adjustment, error) {
	return s.repo.ListByAppointment(ctx, apptID)
}

// ListPending returns unresolved adjustments.
func (s *Service) ListPending(ctx context.Context) ([]*Adjustment, error) {
	return s.repo.ListPending(ctx)
}

// refreshResolutionStatus re-derives the appointment's aggregate resolution
// state from all of its adjustments.
func (s *Service) refreshResolutionStatus(ctx context.Context, appt *appointment.Appointment) error {
	adjs, err := s.repo.ListByAppointment(ctx, appt.ID)
	if err != nil {
		return err
	}

	status := appointment.ResolutionOK
	for _, a := range adjs {
		if a.State != StateResolved {
			status = appointment.ResolutionPending
			break
		}
	}

	if appt.PaymentResolutionStatus == status {
		return nil
	}
	appt.PaymentResolutionStatus = status
	appt.UpdatedAt = time.Now().UTC()
	return s.appointments.Update(ctx, appt)
}
