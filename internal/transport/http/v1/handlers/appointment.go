package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/transport/http/v1/dto"
)

// AppointmentHandler serves appointment financial endpoints.
type AppointmentHandler struct {
	*BaseHandler
	service    *appointment.Service
	treatments treatment.Repository
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(base *BaseHandler, service *appointment.Service, treatments treatment.Repository) *AppointmentHandler {
	return &AppointmentHandler{BaseHandler: base, service: service, treatments: treatments}
}

// Create handles POST /appointments. The pricing snapshot is taken from the
// treatment catalog at booking time.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	clientID, err := id.Parse(req.ClientID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid client id").WithDetail("clientId", req.ClientID))
		return
	}
	professionalID, err := id.Parse(req.ProfessionalID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid professional id").WithDetail("professionalId", req.ProfessionalID))
		return
	}
	treatmentID, err := id.Parse(req.TreatmentID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid treatment id").WithDetail("treatmentId", req.TreatmentID))
		return
	}

	tr, err := h.treatments.GetByID(c.Request.Context(), treatmentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	appt := appointment.New(
		clientID, professionalID, treatmentID,
		req.Date, tr.BasePrice, req.DiscountPercent, tr.RecommendedDeposit(),
	)
	if err := h.service.Create(c.Request.Context(), appt); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, appt.ID.String())
}

// Get handles GET /appointments/:id.
func (h *AppointmentHandler) Get(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	appt, err := h.service.GetByID(c.Request.Context(), apptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, appt)
}

// List handles GET /appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	var req dto.ListAppointmentsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := appointment.ListFilter{
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.ProfessionalID != "" {
		pid, err := id.Parse(req.ProfessionalID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid professional id").WithDetail("professionalId", req.ProfessionalID))
			return
		}
		filter.ProfessionalID = &pid
	}
	if req.ClientID != "" {
		cid, err := id.Parse(req.ClientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid client id").WithDetail("clientId", req.ClientID))
			return
		}
		filter.ClientID = &cid
	}
	if req.Status != "" {
		status := appointment.Status(req.Status)
		filter.Status = &status
	}

	appts, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, appts, len(appts))
}

// AddPayment handles POST /appointments/:id/payments.
func (h *AppointmentHandler) AddPayment(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AddPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receivedBy, err := id.Parse(req.ReceivedBy)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid receiving professional id").WithDetail("receivedBy", req.ReceivedBy))
		return
	}

	payment := appointment.Payment{
		Amount:     req.Amount,
		Method:     ledger.PaymentMethod(req.Method),
		ReceivedBy: receivedBy,
		IsDeposit:  req.IsDeposit,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		payment.PaymentDate = *req.Date
	} else {
		payment.PaymentDate = time.Now().UTC()
	}

	appt, err := h.service.AddPayment(c.Request.Context(), apptID, payment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, appt)
}

// RemovePayment handles DELETE /appointments/:id/payments/:paymentId.
func (h *AppointmentHandler) RemovePayment(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.ParseID(c, "paymentId")
	if !ok {
		return
	}

	appt, err := h.service.RemovePayment(c.Request.Context(), apptID, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, appt)
}

// MarkAttended handles POST /appointments/:id/attend.
func (h *AppointmentHandler) MarkAttended(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	appt, err := h.service.MarkAttended(c.Request.Context(), apptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, appt)
}

// MarkNoShow handles POST /appointments/:id/no-show.
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	apptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	appt, err := h.service.MarkNoShow(c.Request.Context(), apptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, appt)
}
