package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RecordStatus string

const (
	RecordStatusActive    RecordStatus = "active"
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusOverdue   RecordStatus = "overdue"
	RecordStatusPaused    RecordStatus = "paused"
)

// InstallmentRecord is a running-balance agreement. No schedule is
// pre-generated; RemainingAmount and TotalPaid are pure functions of the
// payment history plus the advance payment and are recomputed on every
// payment mutation, never drifted incrementally.
type InstallmentRecord struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	ShopkeeperID uuid.UUID `json:"shopkeeper_id"`

	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`

	TotalCost          decimal.Decimal `json:"total_cost"`
	AdvancePayment     decimal.Decimal `json:"advance_payment"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	TotalPaid          decimal.Decimal `json:"total_paid"`

	StartDate     time.Time       `json:"start_date"`
	DefaultPeriod int             `json:"default_period"` // months
	InterestRate  decimal.Decimal `json:"interest_rate"`

	Status      RecordStatus `json:"status"`
	IsCompleted bool         `json:"is_completed"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recompute derives TotalPaid, RemainingAmount, IsCompleted and Status from
// the sum of all posted payments. The same input always yields the same
// state, so re-running it after any mutation is safe. thresholdDays zero
// means the default overdue threshold.
func (r *InstallmentRecord) Recompute(paymentTotal decimal.Decimal, lastPayment *time.Time, asOf time.Time, thresholdDays int) {
	r.TotalPaid = paymentTotal.Add(r.AdvancePayment)
	remaining := r.TotalCost.Sub(r.AdvancePayment).Sub(paymentTotal)
	if remaining.Sign() <= 0 {
		r.RemainingAmount = decimal.Zero
		r.IsCompleted = true
	} else {
		r.RemainingAmount = remaining
		r.IsCompleted = false
	}
	r.Status = RecordStatus(DeriveStatus(StatusInput{
		Remaining:     r.RemainingAmount,
		Paused:        r.Status == RecordStatusPaused,
		StartDate:     r.StartDate,
		LastPayment:   lastPayment,
		AsOf:          asOf,
		ThresholdDays: thresholdDays,
	}))
}

// PaymentRecord is a free-form payment posting against an
// InstallmentRecord. Posting is immediately authoritative; there is no
// verification step in this mode.
type PaymentRecord struct {
	ID       uuid.UUID `json:"id"`
	RecordID uuid.UUID `json:"record_id"`

	AmountPaid  decimal.Decimal `json:"amount_paid"`
	PaymentDate time.Time       `json:"payment_date"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
