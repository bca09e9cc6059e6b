package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/domain/settlement"
	"clinicash/internal/transport/http/v1/dto"
)

// SettlementHandler serves settlement endpoints.
type SettlementHandler struct {
	*BaseHandler
	service *settlement.Service
}

// NewSettlementHandler creates a new settlement handler.
func NewSettlementHandler(base *BaseHandler, service *settlement.Service) *SettlementHandler {
	return &SettlementHandler{BaseHandler: base, service: service}
}

// GenerateDaily handles POST /settlements/daily.
func (h *SettlementHandler) GenerateDaily(c *gin.Context) {
	var req dto.GenerateDailyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	professionalID, err := id.Parse(req.ProfessionalID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid professional id").WithDetail("professionalId", req.ProfessionalID))
		return
	}

	s, err := h.service.GenerateDaily(c.Request.Context(), professionalID, req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// GenerateMonthly handles POST /settlements/monthly.
func (h *SettlementHandler) GenerateMonthly(c *gin.Context) {
	var req dto.GenerateMonthlyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	professionalID, err := id.Parse(req.ProfessionalID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid professional id").WithDetail("professionalId", req.ProfessionalID))
		return
	}

	s, err := h.service.GenerateMonthly(c.Request.Context(), professionalID, time.Month(req.Month), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// Get handles GET /settlements/:id.
func (h *SettlementHandler) Get(c *gin.Context) {
	settlementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.Get(c.Request.Context(), settlementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// ListByProfessional handles GET /settlements with professionalId query.
func (h *SettlementHandler) ListByProfessional(c *gin.Context) {
	professionalID, err := id.Parse(c.Query("professionalId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid professional id").WithDetail("professionalId", c.Query("professionalId")))
		return
	}

	ss, err := h.service.ListByProfessional(c.Request.Context(), professionalID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, ss, len(ss))
}

// Confirm handles POST /settlements/:id/confirm.
func (h *SettlementHandler) Confirm(c *gin.Context) {
	settlementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Confirm(c.Request.Context(), settlementID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "settlement confirmed")
}

// RecordPayment handles POST /settlements/:id/payments.
func (h *SettlementHandler) RecordPayment(c *gin.Context) {
	settlementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordSettlementPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment := settlement.Payment{
		Amount: req.Amount,
		Method: ledger.PaymentMethod(req.Method),
		Notes:  req.Notes,
	}
	if err := h.service.RecordPayment(c.Request.Context(), settlementID, payment); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "payment recorded")
}

// Delete handles DELETE /settlements/:id.
func (h *SettlementHandler) Delete(c *gin.Context) {
	settlementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), settlementID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
