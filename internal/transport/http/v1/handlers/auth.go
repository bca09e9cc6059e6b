package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/auth"
	"clinicash/internal/transport/http/v1/dto"
)

// AuthHandler serves authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.FromUser(result.User),
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	professionalID := id.Nil()
	if req.ProfessionalID != "" {
		parsed, err := id.Parse(req.ProfessionalID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid professional id").
				WithDetail("professionalId", req.ProfessionalID))
			return
		}
		professionalID = parsed
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Role, professionalID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user.ID.String())
}
