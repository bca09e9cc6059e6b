// Package adjustment reconciles cash collected by the wrong professional
// after an appointment reassignment.
package adjustment

import (
	"time"

	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
)

// Mode selects how the debt between the two professionals is settled.
// The wire values are kept from the legacy system.
type Mode string

const (
	// ModeNetAtSettlement folds the discrepancy into both professionals'
	// next settlement instead of moving cash now. Auto-resolves at creation.
	ModeNetAtSettlement Mode = "neteo_liquidacion"

	// ModeManualTransfer requires the paying professional to physically
	// hand the money over, with reception validating the evidence.
	ModeManualTransfer Mode = "transferencia"
)

// State is the adjustment resolution lifecycle.
type State string

const (
	StatePending           State = "pending"
	StateWaitingValidation State = "waiting_reception_validation"
	StateResolved          State = "resolved"
)

// Adjustment records a fixed debt from one professional to another caused by
// payments collected under a since-reassigned appointment. The amount is the
// sum of the disputed payments and never changes after creation; partial
// resolution is not supported.
type Adjustment struct {
	ID            id.ID `db:"id" json:"id"`
	AppointmentID id.ID `db:"appointment_id" json:"appointmentId"`

	// FromProfessionalID owes the money (they collected it);
	// ToProfessionalID is the appointment's newly assigned professional.
	FromProfessionalID id.ID `db:"from_professional_id" json:"fromProfessionalId"`
	ToProfessionalID   id.ID `db:"to_professional_id" json:"toProfessionalId"`

	Amount types.Money `db:"amount" json:"amount"`
	Mode   Mode        `db:"mode" json:"mode"`
	State  State       `db:"state" json:"state"`

	// AutoResolved marks adjustments that settled themselves at creation
	// (netting mode).
	AutoResolved bool `db:"auto_resolved" json:"autoResolved"`

	SourcePaymentIDs []id.ID `db:"-" json:"sourcePaymentIds"`

	Notes       string `db:"notes" json:"notes,omitempty"`
	EvidenceURL string `db:"evidence_url" json:"evidenceUrl,omitempty"`

	DueDate    *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// Task is the follow-up assigned to the paying professional for a manual
// transfer adjustment.
type Task struct {
	ID           id.ID      `db:"id" json:"id"`
	AdjustmentID id.ID      `db:"adjustment_id" json:"adjustmentId"`
	AssignedTo   id.ID      `db:"assigned_to" json:"assignedTo"`
	Title        string     `db:"title" json:"title"`
	DueDate      time.Time  `db:"due_date" json:"dueDate"`
	Done         bool       `db:"done" json:"done"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
