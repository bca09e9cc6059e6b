package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicash/internal/domain/reception"
	"clinicash/internal/transport/http/v1/dto"
)

// ReceptionHandler serves front-desk close endpoints.
type ReceptionHandler struct {
	*BaseHandler
	service *reception.Service
}

// NewReceptionHandler creates a new reception handler.
func NewReceptionHandler(base *BaseHandler, service *reception.Service) *ReceptionHandler {
	return &ReceptionHandler{BaseHandler: base, service: service}
}

// CloseDaily handles POST /reception/close/daily.
func (h *ReceptionHandler) CloseDaily(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	close, err := h.service.CloseDaily(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, close)
}

// CloseMonthly handles POST /reception/close/monthly.
func (h *ReceptionHandler) CloseMonthly(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	var req dto.CloseMonthlyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	close, err := h.service.CloseMonthly(c.Request.Context(), userID, req.FixedFund)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, close)
}

// ListDaily handles GET /reception/closes/daily.
func (h *ReceptionHandler) ListDaily(c *gin.Context) {
	closes, err := h.service.ListDaily(c.Request.Context(), h.ParseIntQuery(c, "limit", 31))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, closes, len(closes))
}

// ListMonthly handles GET /reception/closes/monthly.
func (h *ReceptionHandler) ListMonthly(c *gin.Context) {
	closes, err := h.service.ListMonthly(c.Request.Context(), h.ParseIntQuery(c, "limit", 12))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, closes, len(closes))
}
