package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"paylater-backend/internal/domain"
)

// MockPlanRepo
type MockPlanRepo struct {
	mock.Mock
}

func (m *MockPlanRepo) CreateWithSchedule(ctx context.Context, plan *domain.Plan, slots []domain.InstallmentSlot) error {
	args := m.Called(ctx, plan, slots)
	return args.Error(0)
}
func (m *MockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}
func (m *MockPlanRepo) ListByShopkeeper(ctx context.Context, shopkeeperID uuid.UUID, status domain.PlanStatus) ([]domain.Plan, error) {
	args := m.Called(ctx, shopkeeperID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}
func (m *MockPlanRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Plan, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}
func (m *MockPlanRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PlanStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockPlanRepo) GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.InstallmentSlot, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentSlot), args.Error(1)
}
func (m *MockPlanRepo) ListSlots(ctx context.Context, planID uuid.UUID) ([]domain.InstallmentSlot, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentSlot), args.Error(1)
}
func (m *MockPlanRepo) ListPendingSlots(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error) {
	args := m.Called(ctx, shopkeeperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentSlot), args.Error(1)
}
func (m *MockPlanRepo) ListOverdueSlots(ctx context.Context, shopkeeperID uuid.UUID, asOf time.Time) ([]domain.InstallmentSlot, error) {
	args := m.Called(ctx, shopkeeperID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentSlot), args.Error(1)
}
func (m *MockPlanRepo) SubmitProof(ctx context.Context, slotID uuid.UUID, proof string, method domain.PaymentMethod, transactionID, notes string) (*domain.InstallmentSlot, error) {
	args := m.Called(ctx, slotID, proof, method, transactionID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentSlot), args.Error(1)
}
func (m *MockPlanRepo) VerifySlot(ctx context.Context, slotID, verifierID uuid.UUID, asOf time.Time) (*domain.InstallmentSlot, *domain.Plan, error) {
	args := m.Called(ctx, slotID, verifierID, asOf)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.InstallmentSlot), args.Get(1).(*domain.Plan), args.Error(2)
}
func (m *MockPlanRepo) RejectSlot(ctx context.Context, slotID uuid.UUID, reason string) (*domain.InstallmentSlot, error) {
	args := m.Called(ctx, slotID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentSlot), args.Error(1)
}
func (m *MockPlanRepo) ListActivePlans(ctx context.Context) ([]domain.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}
func (m *MockPlanRepo) LastVerifiedAt(ctx context.Context, planID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockRecordRepo
type MockRecordRepo struct {
	mock.Mock
}

func (m *MockRecordRepo) Create(ctx context.Context, record *domain.InstallmentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
func (m *MockRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentRecord), args.Error(1)
}
func (m *MockRecordRepo) ListByShopkeeper(ctx context.Context, shopkeeperID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error) {
	args := m.Called(ctx, shopkeeperID, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentRecord), args.Error(1)
}
func (m *MockRecordRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error) {
	args := m.Called(ctx, customerID, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentRecord), args.Error(1)
}
func (m *MockRecordRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RecordStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockRecordRepo) CreatePayment(ctx context.Context, payment *domain.PaymentRecord, asOf time.Time) (*domain.InstallmentRecord, error) {
	args := m.Called(ctx, payment, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentRecord), args.Error(1)
}
func (m *MockRecordRepo) DeletePayment(ctx context.Context, paymentID uuid.UUID, asOf time.Time) (*domain.InstallmentRecord, error) {
	args := m.Called(ctx, paymentID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentRecord), args.Error(1)
}
func (m *MockRecordRepo) GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}
func (m *MockRecordRepo) ListPayments(ctx context.Context, recordID uuid.UUID) ([]domain.PaymentRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentRecord), args.Error(1)
}
func (m *MockRecordRepo) SumPaymentsSince(ctx context.Context, customerID uuid.UUID, since, until time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID, since, until)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockRecordRepo) LastPaymentDate(ctx context.Context, recordID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, shopkeeperID uuid.UUID, limit, offset int) ([]domain.Notification, int, error) {
	args := m.Called(ctx, shopkeeperID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Int(1), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, shopkeeperID uuid.UUID) error {
	args := m.Called(ctx, id, shopkeeperID)
	return args.Error(0)
}
