package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicash/internal/core/types"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
)

// CatalogHandler serves the professional and treatment catalogs.
type CatalogHandler struct {
	*BaseHandler
	professionals professional.Repository
	treatments    treatment.Repository
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, professionals professional.Repository, treatments treatment.Repository) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, professionals: professionals, treatments: treatments}
}

// CreateProfessionalRequest adds a practitioner to the catalog.
type CreateProfessionalRequest struct {
	Name           string        `json:"name" binding:"required"`
	CommissionRate types.Percent `json:"commissionRate"`
}

// CreateProfessional handles POST /catalogs/professionals.
func (h *CatalogHandler) CreateProfessional(c *gin.Context) {
	var req CreateProfessionalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := professional.New(req.Name, req.CommissionRate)
	if err := p.Validate(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.professionals.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID.String())
}

// GetProfessional handles GET /catalogs/professionals/:id.
func (h *CatalogHandler) GetProfessional(c *gin.Context) {
	pid, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.professionals.GetByID(c.Request.Context(), pid)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// ListProfessionals handles GET /catalogs/professionals.
func (h *CatalogHandler) ListProfessionals(c *gin.Context) {
	ps, err := h.professionals.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, ps, len(ps))
}

// CreateTreatmentRequest adds a bookable service to the catalog.
type CreateTreatmentRequest struct {
	Name           string        `json:"name" binding:"required"`
	BasePrice      types.Money   `json:"basePrice"`
	DepositPercent types.Percent `json:"depositPercent"`
	MaxDeposit     types.Money   `json:"maxDeposit"`
}

// CreateTreatment handles POST /catalogs/treatments.
func (h *CatalogHandler) CreateTreatment(c *gin.Context) {
	var req CreateTreatmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := treatment.New(req.Name, req.BasePrice, req.DepositPercent, req.MaxDeposit)
	if err := t.Validate(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.treatments.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t.ID.String())
}

// GetTreatment handles GET /catalogs/treatments/:id.
func (h *CatalogHandler) GetTreatment(c *gin.Context) {
	tid, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.treatments.GetByID(c.Request.Context(), tid)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// ListTreatments handles GET /catalogs/treatments.
func (h *CatalogHandler) ListTreatments(c *gin.Context) {
	ts, err := h.treatments.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, ts, len(ts))
}
