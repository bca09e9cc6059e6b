// Package reception provides the front-desk register close engine:
// daily product-sale snapshots and the monthly fixed-fund excess sweep.
package reception

import (
	"context"
	"time"

	"clinicash/internal/core/id"
	"clinicash/internal/core/types"
)

// DailyClose is the once-per-date snapshot of the day's product sales.
// It records totals for visibility and moves no money.
type DailyClose struct {
	ID   id.ID     `db:"id" json:"id"`
	Date time.Time `db:"date" json:"date"`

	CashSales      types.Money `db:"cash_sales" json:"cashSales"`
	TransferSales  types.Money `db:"transfer_sales" json:"transferSales"`
	OperationCount int         `db:"operation_count" json:"operationCount"`

	ClosedBy  id.ID     `db:"closed_by" json:"closedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MonthlyClose is the once-per-month close that sweeps everything above the
// fixed fund from reception to the administrator register.
type MonthlyClose struct {
	ID    id.ID      `db:"id" json:"id"`
	Month time.Month `db:"month" json:"month"`
	Year  int        `db:"year" json:"year"`

	BalanceBefore types.Money `db:"balance_before" json:"balanceBefore"`
	FixedFund     types.Money `db:"fixed_fund" json:"fixedFund"`
	Excess        types.Money `db:"excess" json:"excess"`

	ClosedBy  id.ID     `db:"closed_by" json:"closedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Repository defines persistence for reception closes. Closes are idempotent
// once-per-period snapshots; they are never overwritten.
type Repository interface {
	CreateDaily(ctx context.Context, c *DailyClose) error
	CreateMonthly(ctx context.Context, c *MonthlyClose) error

	// FindDailyByDate matches by calendar-date equality, not range.
	FindDailyByDate(ctx context.Context, date time.Time) (*DailyClose, error)
	FindMonthly(ctx context.Context, month time.Month, year int) (*MonthlyClose, error)

	ListDaily(ctx context.Context, limit int) ([]*DailyClose, error)
	ListMonthly(ctx context.Context, limit int) ([]*MonthlyClose, error)
}
