package dto

import (
	"clinicash/internal/core/types"
)

// CloseMonthlyRequest runs the monthly reception close with the fund to keep.
type CloseMonthlyRequest struct {
	FixedFund types.Money `json:"fixedFund" binding:"required"`
}
