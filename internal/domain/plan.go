package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusOverdue   PlanStatus = "overdue"
	PlanStatusDefaulted PlanStatus = "defaulted"
	PlanStatusCancelled PlanStatus = "cancelled"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Plan is a scheduled-verified installment agreement. Principal terms are
// fixed at creation; only balance, counters and status mutate afterwards.
type Plan struct {
	ID           uuid.UUID  `json:"id"`
	ShopkeeperID uuid.UUID  `json:"shopkeeper_id"`
	BuyerID      uuid.UUID  `json:"buyer_id"`
	ProductID    *uuid.UUID `json:"product_id,omitempty"`

	PlanName        string          `json:"plan_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DownPayment     decimal.Decimal `json:"down_payment"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`

	NumberOfInstallments int             `json:"number_of_installments"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount"`
	Frequency            Frequency       `json:"frequency"`

	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	NextDueDate *time.Time `json:"next_due_date,omitempty"`

	Status           PlanStatus `json:"status"`
	InstallmentsPaid int        `json:"installments_paid"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
