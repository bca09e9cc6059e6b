package dto

import (
	"time"

	"clinicash/internal/core/types"
)

// CreateAppointmentRequest books a session with its pricing snapshot inputs.
type CreateAppointmentRequest struct {
	ClientID        string        `json:"clientId" binding:"required"`
	ProfessionalID  string        `json:"professionalId" binding:"required"`
	TreatmentID     string        `json:"treatmentId" binding:"required"`
	Date            time.Time     `json:"date" binding:"required"`
	DiscountPercent types.Percent `json:"discountPercent"`
}

// AddPaymentRequest records one payment against an appointment.
type AddPaymentRequest struct {
	Amount     types.Money `json:"amount" binding:"required"`
	Method     string      `json:"method" binding:"required,oneof=cash transfer"`
	ReceivedBy string      `json:"receivedBy" binding:"required"`
	IsDeposit  bool        `json:"isDeposit"`
	Date       *time.Time  `json:"date,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// ListAppointmentsRequest narrows appointment listings.
type ListAppointmentsRequest struct {
	ProfessionalID string     `form:"professionalId"`
	ClientID       string     `form:"clientId"`
	Status         string     `form:"status"`
	From           *time.Time `form:"from"`
	To             *time.Time `form:"to"`
	Limit          int        `form:"limit"`
	Offset         int        `form:"offset"`
}
