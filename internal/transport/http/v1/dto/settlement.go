package dto

import (
	"time"

	"clinicash/internal/core/types"
)

// GenerateDailyRequest generates a daily settlement for one professional.
type GenerateDailyRequest struct {
	ProfessionalID string    `json:"professionalId" binding:"required"`
	Date           time.Time `json:"date" binding:"required"`
}

// GenerateMonthlyRequest generates a monthly settlement for one professional.
type GenerateMonthlyRequest struct {
	ProfessionalID string `json:"professionalId" binding:"required"`
	Month          int    `json:"month" binding:"required,min=1,max=12"`
	Year           int    `json:"year" binding:"required"`
}

// RecordSettlementPaymentRequest records a partial payment against a settlement.
type RecordSettlementPaymentRequest struct {
	Amount types.Money `json:"amount" binding:"required"`
	Method string      `json:"method" binding:"required,oneof=cash transfer"`
	Notes  string      `json:"notes,omitempty"`
}
