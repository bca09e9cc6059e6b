package dto

import (
	"time"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
	"clinicash/internal/domain/ledger"
)

// OwnerRequest identifies one register in request payloads and query params.
type OwnerRequest struct {
	Type           string `json:"type" form:"type" binding:"required,oneof=reception administrator professional"`
	ProfessionalID string `json:"professionalId,omitempty" form:"professionalId"`
}

// ToOwnerKey resolves the request into a register key.
func (r OwnerRequest) ToOwnerKey() (ledger.OwnerKey, error) {
	ownerType := ledger.RegisterType(r.Type)
	if ownerType != ledger.RegisterProfessional {
		return ledger.OwnerKey{Type: ownerType}, nil
	}
	pid, err := id.Parse(r.ProfessionalID)
	if err != nil {
		return ledger.OwnerKey{}, apperror.NewValidation("invalid professional id").
			WithDetail("professionalId", r.ProfessionalID)
	}
	return ledger.ProfessionalOwner(pid), nil
}

// OpenRegisterRequest opens a register with a counted float.
type OpenRegisterRequest struct {
	Owner          OwnerRequest `json:"owner" binding:"required"`
	OpeningBalance types.Money  `json:"openingBalance"`
}

// SetFixedFundRequest changes the reception register's fixed fund.
type SetFixedFundRequest struct {
	Amount types.Money `json:"amount" binding:"required"`
}

// PostTransactionRequest posts one signed cash movement.
type PostTransactionRequest struct {
	Type           string      `json:"type" binding:"required"`
	Amount         types.Money `json:"amount" binding:"required"`
	Method         string      `json:"method" binding:"required,oneof=cash transfer"`
	RegisterType   string      `json:"registerType" binding:"required,oneof=reception administrator professional"`
	ProfessionalID string      `json:"professionalId,omitempty"`
	AppointmentID  string      `json:"appointmentId,omitempty"`
	ClientID       string      `json:"clientId,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	Date           *time.Time  `json:"date,omitempty"`
}

// ToTransaction maps the request to a ledger transaction.
func (r PostTransactionRequest) ToTransaction() (ledger.Transaction, error) {
	t := ledger.Transaction{
		Type:         ledger.TransactionType(r.Type),
		Amount:       r.Amount,
		Method:       ledger.PaymentMethod(r.Method),
		RegisterType: ledger.RegisterType(r.RegisterType),
		Notes:        r.Notes,
	}
	if r.Date != nil {
		t.Date = *r.Date
	}

	var err error
	if t.ProfessionalID, err = parseOptionalID(r.ProfessionalID, "professionalId"); err != nil {
		return t, err
	}
	if t.AppointmentID, err = parseOptionalID(r.AppointmentID, "appointmentId"); err != nil {
		return t, err
	}
	if t.ClientID, err = parseOptionalID(r.ClientID, "clientId"); err != nil {
		return t, err
	}
	return t, nil
}

func parseOptionalID(value, field string) (id.ID, error) {
	if value == "" {
		return id.Nil(), nil
	}
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id").WithDetail(field, value)
	}
	return parsed, nil
}

// RegisterResponse is the read shape of one register.
type RegisterResponse struct {
	Owner          OwnerRequest         `json:"owner"`
	Status         string               `json:"status"`
	OpeningBalance types.Money          `json:"openingBalance"`
	Balance        types.Money          `json:"balance"`
	FixedFund      types.Money          `json:"fixedFund"`
	ClosingBalance *types.Money         `json:"closingBalance,omitempty"`
	OpenedAt       time.Time            `json:"openedAt"`
	ClosedAt       *time.Time           `json:"closedAt,omitempty"`
	Transactions   []ledger.Transaction `json:"transactions"`
}

// FromRegister maps a register to its response shape with the folded balance.
func FromRegister(reg *ledger.CashRegister) RegisterResponse {
	owner := OwnerRequest{Type: string(reg.Owner.Type)}
	if reg.Owner.Type == ledger.RegisterProfessional {
		owner.ProfessionalID = reg.Owner.ProfessionalID.String()
	}
	return RegisterResponse{
		Owner:          owner,
		Status:         string(reg.Status),
		OpeningBalance: reg.OpeningBalance,
		Balance:        reg.Balance(),
		FixedFund:      reg.FixedFund,
		ClosingBalance: reg.ClosingBalance,
		OpenedAt:       reg.OpenedAt,
		ClosedAt:       reg.ClosedAt,
		Transactions:   reg.Transactions,
	}
}
