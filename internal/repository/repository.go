package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
)

// PlanRepository persists scheduled-verified plans and their installment
// slots. The balance-affecting slot operations (VerifySlot, RejectSlot,
// SubmitProof) run inside a single transaction with the plan row locked,
// so slot state and plan balance always change together.
type PlanRepository interface {
	// CreateWithSchedule inserts the plan and its full slot batch
	// atomically; a failure leaves neither behind.
	CreateWithSchedule(ctx context.Context, plan *domain.Plan, slots []domain.InstallmentSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)
	ListByShopkeeper(ctx context.Context, shopkeeperID uuid.UUID, status domain.PlanStatus) ([]domain.Plan, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Plan, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PlanStatus) error

	GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.InstallmentSlot, error)
	ListSlots(ctx context.Context, planID uuid.UUID) ([]domain.InstallmentSlot, error)
	ListPendingSlots(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error)
	ListOverdueSlots(ctx context.Context, shopkeeperID uuid.UUID, asOf time.Time) ([]domain.InstallmentSlot, error)

	SubmitProof(ctx context.Context, slotID uuid.UUID, proof string, method domain.PaymentMethod, transactionID, notes string) (*domain.InstallmentSlot, error)
	VerifySlot(ctx context.Context, slotID, verifierID uuid.UUID, asOf time.Time) (*domain.InstallmentSlot, *domain.Plan, error)
	RejectSlot(ctx context.Context, slotID uuid.UUID, reason string) (*domain.InstallmentSlot, error)

	// ListActivePlans returns every plan still in the active status, for
	// the nightly overdue sweep.
	ListActivePlans(ctx context.Context) ([]domain.Plan, error)
	// LastVerifiedAt returns the most recent verification time among the
	// plan's slots, or nil when nothing has been verified yet.
	LastVerifiedAt(ctx context.Context, planID uuid.UUID) (*time.Time, error)
}

// RecordRepository persists running-balance records and their payments.
// CreatePayment and DeletePayment recompute the owning record's totals
// from the full payment set inside the same transaction.
type RecordRepository interface {
	Create(ctx context.Context, record *domain.InstallmentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentRecord, error)
	ListByShopkeeper(ctx context.Context, shopkeeperID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RecordStatus) error

	CreatePayment(ctx context.Context, payment *domain.PaymentRecord, asOf time.Time) (*domain.InstallmentRecord, error)
	DeletePayment(ctx context.Context, paymentID uuid.UUID, asOf time.Time) (*domain.InstallmentRecord, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentRecord, error)
	ListPayments(ctx context.Context, recordID uuid.UUID) ([]domain.PaymentRecord, error)

	// SumPaymentsSince aggregates payments posted to any of the customer's
	// open records within [since, until], for the monthly-due figures.
	SumPaymentsSince(ctx context.Context, customerID uuid.UUID, since, until time.Time) (decimal.Decimal, error)
	LastPaymentDate(ctx context.Context, recordID uuid.UUID) (*time.Time, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, shopkeeperID uuid.UUID, limit, offset int) ([]domain.Notification, int, error)
	MarkAsRead(ctx context.Context, id, shopkeeperID uuid.UUID) error
}
