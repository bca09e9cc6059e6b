package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicash/internal/core/id"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/transport/http/v1/dto"
)

// RegisterHandler serves cash register endpoints.
type RegisterHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(base *BaseHandler, service *ledger.Service) *RegisterHandler {
	return &RegisterHandler{BaseHandler: base, service: service}
}

// List handles GET /registers.
func (h *RegisterHandler) List(c *gin.Context) {
	registers, err := h.service.ListRegisters(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.RegisterResponse, 0, len(registers))
	for _, reg := range registers {
		out = append(out, dto.FromRegister(reg))
	}
	h.BaseHandler.List(c, out, len(out))
}

// Get handles GET /registers/:type with optional professionalId query.
func (h *RegisterHandler) Get(c *gin.Context) {
	owner, ok := h.ownerFromPath(c)
	if !ok {
		return
	}

	reg, err := h.service.GetRegister(c.Request.Context(), owner)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegister(reg))
}

// Open handles POST /registers/open.
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	owner, err := req.Owner.ToOwnerKey()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.OpenRegister(c.Request.Context(), owner, req.OpeningBalance); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "register opened")
}

// Close handles POST /registers/:type/close with optional professionalId query.
func (h *RegisterHandler) Close(c *gin.Context) {
	owner, ok := h.ownerFromPath(c)
	if !ok {
		return
	}

	if err := h.service.CloseRegister(c.Request.Context(), owner); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "register closed")
}

// SetFixedFund handles PUT /registers/reception/fixed-fund.
func (h *RegisterHandler) SetFixedFund(c *gin.Context) {
	var req dto.SetFixedFundRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetFixedFund(c.Request.Context(), req.Amount); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "fixed fund updated")
}

// PostTransaction handles POST /transactions.
func (h *RegisterHandler) PostTransaction(c *gin.Context) {
	var req dto.PostTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := req.ToTransaction()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.PostTransaction(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "transaction posted")
}

// ListTransactions handles GET /transactions.
func (h *RegisterHandler) ListTransactions(c *gin.Context) {
	filter := ledger.TransactionFilter{
		Limit:  h.ParseIntQuery(c, "limit", 0),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("type"); v != "" {
		t := ledger.TransactionType(v)
		filter.Type = &t
	}
	if v := c.Query("method"); v != "" {
		m := ledger.PaymentMethod(v)
		filter.Method = &m
	}
	if v := c.Query("professionalId"); v != "" {
		pid, err := id.Parse(v)
		if err == nil {
			filter.ProfessionalID = &pid
		}
	}

	txs, err := h.service.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, txs, len(txs))
}

func (h *RegisterHandler) ownerFromPath(c *gin.Context) (ledger.OwnerKey, bool) {
	req := dto.OwnerRequest{
		Type:           c.Param("type"),
		ProfessionalID: c.Query("professionalId"),
	}
	owner, err := req.ToOwnerKey()
	if err != nil {
		h.Error(c, err)
		return ledger.OwnerKey{}, false
	}
	return owner, true
}
