package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/utils"
)

// CreatePlanInput carries the creation parameters for a scheduled-verified
// plan. All derived values (remaining amount, installment amount, end
// date, slot due dates) are computed by the service.
type CreatePlanInput struct {
	ShopkeeperID         uuid.UUID
	BuyerID              uuid.UUID
	ProductID            *uuid.UUID
	PlanName             string
	TotalAmount          decimal.Decimal
	DownPayment          decimal.Decimal
	InterestRate         decimal.Decimal
	NumberOfInstallments int
	Frequency            domain.Frequency
	StartDate            time.Time
	Notes                string
}

// CreateRecordInput carries the creation parameters for a running-balance
// record.
type CreateRecordInput struct {
	CustomerID         uuid.UUID
	ShopkeeperID       uuid.UUID
	ProductName        string
	ProductDescription string
	TotalCost          decimal.Decimal
	AdvancePayment     decimal.Decimal
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
	DefaultPeriod      int
	InterestRate       decimal.Decimal
	Notes              string
}

// PlanStats summarizes a shopkeeper's scheduled-mode book.
type PlanStats struct {
	TotalPlans      int             `json:"total_plans"`
	ActivePlans     int             `json:"active_plans"`
	CompletedPlans  int             `json:"completed_plans"`
	OverduePlans    int             `json:"overdue_plans"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

type PlanService interface {
	CreatePlan(ctx context.Context, in CreatePlanInput) (*domain.Plan, []domain.InstallmentSlot, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, []domain.InstallmentSlot, error)
	ListPlans(ctx context.Context, shopkeeperID uuid.UUID, status domain.PlanStatus) ([]domain.Plan, error)
	ListBuyerPlans(ctx context.Context, buyerID uuid.UUID) ([]domain.Plan, error)
	GetPlanStats(ctx context.Context, shopkeeperID uuid.UUID) (*PlanStats, error)
	GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.InstallmentSlot, error)

	SubmitProof(ctx context.Context, slotID uuid.UUID, proof string, method domain.PaymentMethod, transactionID, notes string) (*domain.InstallmentSlot, error)
	VerifyPayment(ctx context.Context, slotID, verifierID uuid.UUID) (*domain.InstallmentSlot, *domain.Plan, error)
	RejectPayment(ctx context.Context, slotID uuid.UUID, reason string) (*domain.InstallmentSlot, error)

	ListPendingPayments(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error)
	ListOverduePayments(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error)
	MarkOverduePlans(ctx context.Context, asOf time.Time) (int, error)
}

type RecordService interface {
	CreateRecord(ctx context.Context, in CreateRecordInput) (*domain.InstallmentRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*domain.InstallmentRecord, []domain.PaymentRecord, error)
	ListRecords(ctx context.Context, shopkeeperID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error)
	ListCustomerRecords(ctx context.Context, customerID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error)

	AddPayment(ctx context.Context, recordID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, notes string) (*domain.PaymentRecord, *domain.InstallmentRecord, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentRecord, error)
	DeletePayment(ctx context.Context, paymentID uuid.UUID) (*domain.InstallmentRecord, error)

	GetStatus(ctx context.Context, recordID uuid.UUID) (domain.RecordStatus, error)
	GetCustomerDues(ctx context.Context, customerID uuid.UUID) (*utils.CustomerDues, error)
	DaysOverdue(ctx context.Context, recordID uuid.UUID) (int, error)
	ListOverdueRecords(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentRecord, error)
}

type NotificationService interface {
	// CreateDueReminder writes an in-app reminder row from the shopkeeper's
	// current due figures. Delivery is owned by an external collaborator.
	CreateDueReminder(ctx context.Context, shopkeeperID uuid.UUID, unpaidCount int, totalDue decimal.Decimal) (*domain.Notification, error)
	List(ctx context.Context, shopkeeperID uuid.UUID, limit, offset int) ([]domain.Notification, int, error)
	MarkAsRead(ctx context.Context, id, shopkeeperID uuid.UUID) error
}
