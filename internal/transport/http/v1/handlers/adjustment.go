package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/adjustment"
	"clinicash/internal/transport/http/v1/dto"
)

// AdjustmentHandler serves inter-professional adjustment endpoints.
type AdjustmentHandler struct {
	*BaseHandler
	service *adjustment.Service
}

// NewAdjustmentHandler creates a new adjustment handler.
func NewAdjustmentHandler(base *BaseHandler, service *adjustment.Service) *AdjustmentHandler {
	return &AdjustmentHandler{BaseHandler: base, service: service}
}

// Reassign handles POST /appointments/:id/reassign. Moving the appointment
// to another professional opens one adjustment per foreign payer.
func (h *AdjustmentHandler) Reassign(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReassignAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	newProfessionalID, err := id.Parse(req.NewProfessionalID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid professional id").WithDetail("newProfessionalId", req.NewProfessionalID))
		return
	}

	adjustments, err := h.service.HandleReassignment(
		c.Request.Context(), apptID, newProfessionalID,
		adjustment.Mode(req.Mode), req.Notes,
	)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, adjustments, len(adjustments))
}

// Get handles GET /adjustments/:id.
func (h *AdjustmentHandler) Get(c *gin.Context) {
	adjID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	adj, err := h.service.GetByID(c.Request.Context(), adjID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, adj)
}

// ListPending handles GET /adjustments/pending.
func (h *AdjustmentHandler) ListPending(c *gin.Context) {
	adjustments, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, adjustments, len(adjustments))
}

// ListByAppointment handles GET /appointments/:id/adjustments.
func (h *AdjustmentHandler) ListByAppointment(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	adjustments, err := h.service.ListByAppointment(c.Request.Context(), apptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, adjustments, len(adjustments))
}

// MarkDone handles POST /adjustments/:id/done.
func (h *AdjustmentHandler) MarkDone(c *gin.Context) {
	adjID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.MarkAdjustmentDoneRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.MarkDone(c.Request.Context(), adjID, req.EvidenceURL); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "adjustment reported done")
}

// ConfirmResolution handles POST /adjustments/:id/confirm.
func (h *AdjustmentHandler) ConfirmResolution(c *gin.Context) {
	adjID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.ConfirmResolution(c.Request.Context(), adjID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "adjustment resolved")
}
