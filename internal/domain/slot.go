package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SlotStatus string

const (
	SlotStatusPending  SlotStatus = "pending"
	SlotStatusVerified SlotStatus = "verified"
	SlotStatusRejected SlotStatus = "rejected"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileWallet PaymentMethod = "mobile_wallet"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

// InstallmentSlot is one pre-scheduled installment of a Plan. The full set
// is created in a batch at plan creation; slots are never added or removed,
// only their proof and lifecycle fields mutate. Verified is terminal.
type InstallmentSlot struct {
	ID     uuid.UUID `json:"id"`
	PlanID uuid.UUID `json:"plan_id"`

	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`

	DueDate     time.Time  `json:"due_date"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`

	PaymentProof  string `json:"payment_proof"`
	TransactionID string `json:"transaction_id"`

	Status     SlotStatus `json:"status"`
	VerifiedBy *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdue reports whether an unverified slot's due date has passed.
func (s *InstallmentSlot) IsOverdue(asOf time.Time) bool {
	return s.Status == SlotStatusPending && s.DueDate.Before(truncateToDay(asOf))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
