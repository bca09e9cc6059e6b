package dto

// ReassignAppointmentRequest moves an appointment to a new professional and
// opens adjustments for any foreign payments.
type ReassignAppointmentRequest struct {
	NewProfessionalID string `json:"newProfessionalId" binding:"required"`
	Mode              string `json:"mode" binding:"required,oneof=neteo_liquidacion transferencia"`
	Notes             string `json:"notes,omitempty"`
}

// MarkAdjustmentDoneRequest reports the transfer as physically completed.
type MarkAdjustmentDoneRequest struct {
	EvidenceURL string `json:"evidenceUrl,omitempty"`
}
