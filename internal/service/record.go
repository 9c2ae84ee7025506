package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository"
	"paylater-backend/internal/utils"
)

type recordService struct {
	recordRepo    repository.RecordRepository
	thresholdDays int
	now           func() time.Time
}

// NewRecordService creates the running-balance service.
// overdueThresholdDays is the configured overdue threshold; zero means the
// engine default.
func NewRecordService(recordRepo repository.RecordRepository, overdueThresholdDays int) RecordService {
	return &recordService{recordRepo: recordRepo, thresholdDays: overdueThresholdDays, now: time.Now}
}

// CreateRecord opens a running-balance record. The advance payment counts
// toward total_paid immediately; remaining starts at total_cost minus the
// advance.
func (s *recordService) CreateRecord(ctx context.Context, in CreateRecordInput) (*domain.InstallmentRecord, error) {
	logger.EnterMethod("recordService.CreateRecord", "customerID", in.CustomerID)

	if in.AdvancePayment.GreaterThanOrEqual(in.TotalCost) {
		err := fmt.Errorf("%w: advance payment %s must be less than total cost %s",
			domain.ErrInvalidScheduleParameters, in.AdvancePayment, in.TotalCost)
		logger.ExitMethodWithError("recordService.CreateRecord", err, "customerID", in.CustomerID)
		return nil, err
	}
	if in.MonthlyInstallment.Sign() <= 0 {
		err := fmt.Errorf("%w: monthly installment must be greater than zero",
			domain.ErrInvalidScheduleParameters)
		logger.ExitMethodWithError("recordService.CreateRecord", err, "customerID", in.CustomerID)
		return nil, err
	}

	defaultPeriod := in.DefaultPeriod
	if defaultPeriod <= 0 {
		defaultPeriod = 12
	}
	startDate := in.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	record := &domain.InstallmentRecord{
		ID:                 uuid.New(),
		CustomerID:         in.CustomerID,
		ShopkeeperID:       in.ShopkeeperID,
		ProductName:        in.ProductName,
		ProductDescription: in.ProductDescription,
		TotalCost:          in.TotalCost,
		AdvancePayment:     in.AdvancePayment,
		MonthlyInstallment: in.MonthlyInstallment,
		RemainingAmount:    in.TotalCost.Sub(in.AdvancePayment),
		TotalPaid:          in.AdvancePayment,
		StartDate:          startDate,
		DefaultPeriod:      defaultPeriod,
		InterestRate:       in.InterestRate,
		Status:             domain.RecordStatusActive,
		Notes:              in.Notes,
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		logger.ExitMethodWithError("recordService.CreateRecord", err, "customerID", in.CustomerID)
		return nil, err
	}

	logger.ExitMethod("recordService.CreateRecord", "recordID", record.ID, "remaining", record.RemainingAmount)
	return record, nil
}

func (s *recordService) GetRecord(ctx context.Context, id uuid.UUID) (*domain.InstallmentRecord, []domain.PaymentRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.recordRepo.ListPayments(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return record, payments, nil
}

func (s *recordService) ListRecords(ctx context.Context, shopkeeperID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error) {
	return s.recordRepo.ListByShopkeeper(ctx, shopkeeperID, completed)
}

func (s *recordService) ListCustomerRecords(ctx context.Context, customerID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error) {
	return s.recordRepo.ListByCustomer(ctx, customerID, completed)
}

// AddPayment posts a payment against an open record. The amount must be
// positive and the record must not be completed; the repository recomputes
// the record's totals from the full payment set in the same transaction.
func (s *recordService) AddPayment(ctx context.Context, recordID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, notes string) (*domain.PaymentRecord, *domain.InstallmentRecord, error) {
	logger.EnterMethod("recordService.AddPayment", "recordID", recordID, "amount", amount)

	if amount.Sign() <= 0 {
		logger.ExitMethodWithError("recordService.AddPayment", domain.ErrInvalidAmount, "recordID", recordID)
		return nil, nil, domain.ErrInvalidAmount
	}
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	payment := &domain.PaymentRecord{
		ID:          uuid.New(),
		RecordID:    recordID,
		AmountPaid:  amount,
		PaymentDate: paymentDate,
		Notes:       notes,
	}
	record, err := s.recordRepo.CreatePayment(ctx, payment, s.now())
	if err != nil {
		logger.ExitMethodWithError("recordService.AddPayment", err, "recordID", recordID)
		return nil, nil, err
	}

	logger.ExitMethod("recordService.AddPayment", "paymentID", payment.ID,
		"remaining", record.RemainingAmount, "isCompleted", record.IsCompleted)
	return payment, record, nil
}

func (s *recordService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentRecord, error) {
	return s.recordRepo.GetPayment(ctx, paymentID)
}

func (s *recordService) DeletePayment(ctx context.Context, paymentID uuid.UUID) (*domain.InstallmentRecord, error) {
	logger.EnterMethod("recordService.DeletePayment", "paymentID", paymentID)

	record, err := s.recordRepo.DeletePayment(ctx, paymentID, s.now())
	if err != nil {
		logger.ExitMethodWithError("recordService.DeletePayment", err, "paymentID", paymentID)
		return nil, err
	}

	logger.ExitMethod("recordService.DeletePayment", "paymentID", paymentID,
		"remaining", record.RemainingAmount, "isCompleted", record.IsCompleted)
	return record, nil
}

// GetStatus re-derives the record's status on read; running-balance status
// is never trusted from the stored column alone because overdue depends on
// the as-of date.
func (s *recordService) GetStatus(ctx context.Context, recordID uuid.UUID) (domain.RecordStatus, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return "", err
	}
	last, err := s.recordRepo.LastPaymentDate(ctx, recordID)
	if err != nil {
		return "", err
	}
	status := domain.DeriveStatus(domain.StatusInput{
		Remaining:     record.RemainingAmount,
		Paused:        record.Status == domain.RecordStatusPaused,
		StartDate:     record.StartDate,
		LastPayment:   last,
		AsOf:          s.now(),
		ThresholdDays: s.thresholdDays,
	})
	return domain.RecordStatus(status), nil
}

// GetCustomerDues answers "how much is still due this month" across all of
// the customer's open records, used by reminders and the dashboard.
func (s *recordService) GetCustomerDues(ctx context.Context, customerID uuid.UUID) (*utils.CustomerDues, error) {
	open := false
	records, err := s.recordRepo.ListByCustomer(ctx, customerID, &open)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	paid, err := s.recordRepo.SumPaymentsSince(ctx, customerID, utils.MonthStart(asOf), asOf)
	if err != nil {
		return nil, err
	}

	dues := utils.MonthlyDue(records, paid)
	return &dues, nil
}

func (s *recordService) DaysOverdue(ctx context.Context, recordID uuid.UUID) (int, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return 0, err
	}
	last, err := s.recordRepo.LastPaymentDate(ctx, recordID)
	if err != nil {
		return 0, err
	}
	return domain.DaysOverdue(record.StartDate, last, s.now()), nil
}

func (s *recordService) ListOverdueRecords(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentRecord, error) {
	open := false
	records, err := s.recordRepo.ListByShopkeeper(ctx, shopkeeperID, &open)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	var overdue []domain.InstallmentRecord
	for _, rec := range records {
		last, err := s.recordRepo.LastPaymentDate(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		status := domain.DeriveStatus(domain.StatusInput{
			Remaining:     rec.RemainingAmount,
			Paused:        rec.Status == domain.RecordStatusPaused,
			StartDate:     rec.StartDate,
			LastPayment:   last,
			AsOf:          asOf,
			ThresholdDays: s.thresholdDays,
		})
		if status == domain.StatusOverdue {
			overdue = append(overdue, rec)
		}
	}
	return overdue, nil
}
