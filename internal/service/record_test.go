package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/service"
)

func TestRecordService_CreateRecord(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	shopkeeperID := uuid.New()
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.InstallmentRecord")).Return(nil)

		record, err := svc.CreateRecord(ctx, service.CreateRecordInput{
			CustomerID:         customerID,
			ShopkeeperID:       shopkeeperID,
			ProductName:        "Sewing machine",
			TotalCost:          decimal.NewFromInt(5000),
			AdvancePayment:     decimal.NewFromInt(500),
			MonthlyInstallment: decimal.NewFromInt(450),
			StartDate:          start,
		})
		assert.NoError(t, err)
		assert.Equal(t, "4500.00", record.RemainingAmount.StringFixed(2))
		assert.Equal(t, "500.00", record.TotalPaid.StringFixed(2))
		assert.Equal(t, 12, record.DefaultPeriod)
		assert.Equal(t, domain.RecordStatusActive, record.Status)
		assert.False(t, record.IsCompleted)
		repo.AssertExpectations(t)
	})

	t.Run("AdvanceNotBelowTotal", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)

		_, err := svc.CreateRecord(ctx, service.CreateRecordInput{
			CustomerID:         customerID,
			ShopkeeperID:       shopkeeperID,
			TotalCost:          decimal.NewFromInt(5000),
			AdvancePayment:     decimal.NewFromInt(5000),
			MonthlyInstallment: decimal.NewFromInt(450),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidScheduleParameters)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("MonthlyInstallmentMustBePositive", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)

		_, err := svc.CreateRecord(ctx, service.CreateRecordInput{
			CustomerID:     customerID,
			ShopkeeperID:   shopkeeperID,
			TotalCost:      decimal.NewFromInt(5000),
			AdvancePayment: decimal.NewFromInt(500),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidScheduleParameters)
	})
}

func TestRecordService_AddPayment(t *testing.T) {
	ctx := context.Background()
	recordID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)
		updated := &domain.InstallmentRecord{
			ID:              recordID,
			RemainingAmount: decimal.NewFromInt(3000),
			TotalPaid:       decimal.NewFromInt(2000),
		}
		repo.On("CreatePayment", ctx, mock.AnythingOfType("*domain.PaymentRecord"), mock.AnythingOfType("time.Time")).
			Return(updated, nil)

		payment, record, err := svc.AddPayment(ctx, recordID,
			decimal.NewFromInt(1500), time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC), "")
		assert.NoError(t, err)
		assert.Equal(t, recordID, payment.RecordID)
		assert.Equal(t, "1500.00", payment.AmountPaid.StringFixed(2))
		assert.Equal(t, "3000.00", record.RemainingAmount.StringFixed(2))
		repo.AssertExpectations(t)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)

		_, _, err := svc.AddPayment(ctx, recordID, decimal.Zero, time.Time{}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, _, err = svc.AddPayment(ctx, recordID, decimal.NewFromInt(-10), time.Time{}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		repo.AssertNotCalled(t, "CreatePayment")
	})

	t.Run("CompletedRecordRejectsPayment", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)
		repo.On("CreatePayment", ctx, mock.AnythingOfType("*domain.PaymentRecord"), mock.AnythingOfType("time.Time")).
			Return(nil, domain.ErrRecordCompleted)

		_, _, err := svc.AddPayment(ctx, recordID, decimal.NewFromInt(100), time.Time{}, "")
		assert.ErrorIs(t, err, domain.ErrRecordCompleted)
	})
}

func TestRecordService_DeletePayment(t *testing.T) {
	ctx := context.Background()
	paymentID := uuid.New()

	repo := new(MockRecordRepo)
	svc := service.NewRecordService(repo, 0)
	reopened := &domain.InstallmentRecord{
		RemainingAmount: decimal.NewFromInt(3000),
		IsCompleted:     false,
	}
	repo.On("DeletePayment", ctx, paymentID, mock.AnythingOfType("time.Time")).Return(reopened, nil)

	record, err := svc.DeletePayment(ctx, paymentID)
	assert.NoError(t, err)
	assert.False(t, record.IsCompleted)
	assert.Equal(t, "3000.00", record.RemainingAmount.StringFixed(2))
}

func TestRecordService_GetStatus(t *testing.T) {
	ctx := context.Background()
	recordID := uuid.New()

	t.Run("DerivesOverdueFromStalePayments", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)

		record := &domain.InstallmentRecord{
			ID:              recordID,
			RemainingAmount: decimal.NewFromInt(2000),
			StartDate:       time.Now().AddDate(0, -6, 0),
			Status:          domain.RecordStatusActive,
		}
		last := time.Now().AddDate(0, 0, -(domain.OverdueThresholdDays + 5))
		repo.On("GetByID", ctx, recordID).Return(record, nil)
		repo.On("LastPaymentDate", ctx, recordID).Return(&last, nil)

		status, err := svc.GetStatus(ctx, recordID)
		assert.NoError(t, err)
		assert.Equal(t, domain.RecordStatusOverdue, status)
	})

	t.Run("ActiveWithRecentPayment", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)

		record := &domain.InstallmentRecord{
			ID:              recordID,
			RemainingAmount: decimal.NewFromInt(2000),
			StartDate:       time.Now().AddDate(0, -2, 0),
			Status:          domain.RecordStatusActive,
		}
		last := time.Now().AddDate(0, 0, -3)
		repo.On("GetByID", ctx, recordID).Return(record, nil)
		repo.On("LastPaymentDate", ctx, recordID).Return(&last, nil)

		status, err := svc.GetStatus(ctx, recordID)
		assert.NoError(t, err)
		assert.Equal(t, domain.RecordStatusActive, status)
	})

	t.Run("HonorsConfiguredThreshold", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 10)

		record := &domain.InstallmentRecord{
			ID:              recordID,
			RemainingAmount: decimal.NewFromInt(2000),
			StartDate:       time.Now().AddDate(0, -2, 0),
			Status:          domain.RecordStatusActive,
		}
		// Stale for a 10-day threshold, fresh for the 35-day default.
		last := time.Now().AddDate(0, 0, -15)
		repo.On("GetByID", ctx, recordID).Return(record, nil)
		repo.On("LastPaymentDate", ctx, recordID).Return(&last, nil)

		status, err := svc.GetStatus(ctx, recordID)
		assert.NoError(t, err)
		assert.Equal(t, domain.RecordStatusOverdue, status)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRecordRepo)
		svc := service.NewRecordService(repo, 0)
		repo.On("GetByID", ctx, recordID).Return(nil, domain.ErrNotFound)

		_, err := svc.GetStatus(ctx, recordID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRecordService_GetPayment(t *testing.T) {
	ctx := context.Background()
	paymentID := uuid.New()

	repo := new(MockRecordRepo)
	svc := service.NewRecordService(repo, 0)
	payment := &domain.PaymentRecord{ID: paymentID, AmountPaid: decimal.NewFromInt(250)}
	repo.On("GetPayment", ctx, paymentID).Return(payment, nil)

	got, err := svc.GetPayment(ctx, paymentID)
	assert.NoError(t, err)
	assert.Equal(t, "250.00", got.AmountPaid.StringFixed(2))
	repo.AssertExpectations(t)
}

func TestRecordService_GetCustomerDues(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	open := false

	repo := new(MockRecordRepo)
	svc := service.NewRecordService(repo, 0)

	recordA := domain.InstallmentRecord{ID: uuid.New(), MonthlyInstallment: decimal.NewFromInt(450)}
	recordB := domain.InstallmentRecord{ID: uuid.New(), MonthlyInstallment: decimal.NewFromInt(300)}
	repo.On("ListByCustomer", ctx, customerID, &open).Return([]domain.InstallmentRecord{recordA, recordB}, nil)
	repo.On("SumPaymentsSince", ctx, customerID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(200), nil)

	dues, err := svc.GetCustomerDues(ctx, customerID)
	assert.NoError(t, err)
	assert.Equal(t, "750.00", dues.MonthlyExpected.StringFixed(2))
	assert.Equal(t, "200.00", dues.PaidThisMonth.StringFixed(2))
	assert.Equal(t, "550.00", dues.MonthlyDue.StringFixed(2))
}
