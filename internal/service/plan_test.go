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

func TestPlanService_CreatePlan(t *testing.T) {
	ctx := context.Background()
	shopkeeperID := uuid.New()
	buyerID := uuid.New()
	start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)
		repo.On("CreateWithSchedule", ctx, mock.AnythingOfType("*domain.Plan"), mock.AnythingOfType("[]domain.InstallmentSlot")).Return(nil)

		plan, slots, err := svc.CreatePlan(ctx, service.CreatePlanInput{
			ShopkeeperID:         shopkeeperID,
			BuyerID:              buyerID,
			PlanName:             "Fridge",
			TotalAmount:          decimal.NewFromInt(12000),
			DownPayment:          decimal.NewFromInt(2000),
			InterestRate:         decimal.Zero,
			NumberOfInstallments: 10,
			Frequency:            domain.FrequencyMonthly,
			StartDate:            start,
		})
		assert.NoError(t, err)
		assert.Equal(t, "10000.00", plan.RemainingAmount.StringFixed(2))
		assert.Equal(t, "1000.00", plan.InstallmentAmount.StringFixed(2))
		assert.Equal(t, domain.PlanStatusActive, plan.Status)
		assert.NotNil(t, plan.NextDueDate)
		assert.Equal(t, start, *plan.NextDueDate)
		assert.Len(t, slots, 10)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidTermsRejectedBeforeWrite", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)

		_, _, err := svc.CreatePlan(ctx, service.CreatePlanInput{
			ShopkeeperID:         shopkeeperID,
			BuyerID:              buyerID,
			TotalAmount:          decimal.NewFromInt(1000),
			DownPayment:          decimal.NewFromInt(1500),
			NumberOfInstallments: 5,
			Frequency:            domain.FrequencyMonthly,
			StartDate:            start,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidScheduleParameters)
		repo.AssertNotCalled(t, "CreateWithSchedule")
	})
}

func TestPlanService_GetPlanStats(t *testing.T) {
	ctx := context.Background()
	shopkeeperID := uuid.New()

	repo := new(MockPlanRepo)
	svc := service.NewPlanService(repo, 0)

	plans := []domain.Plan{
		{Status: domain.PlanStatusActive, RemainingAmount: decimal.NewFromInt(1000)},
		{Status: domain.PlanStatusOverdue, RemainingAmount: decimal.NewFromInt(500)},
		{Status: domain.PlanStatusCompleted, RemainingAmount: decimal.Zero},
		{Status: domain.PlanStatusCancelled, RemainingAmount: decimal.NewFromInt(300)},
	}
	repo.On("ListByShopkeeper", ctx, shopkeeperID, domain.PlanStatus("")).Return(plans, nil)

	stats, err := svc.GetPlanStats(ctx, shopkeeperID)
	assert.NoError(t, err)
	assert.Equal(t, 4, stats.TotalPlans)
	assert.Equal(t, 1, stats.ActivePlans)
	assert.Equal(t, 1, stats.CompletedPlans)
	assert.Equal(t, 1, stats.OverduePlans)
	// Cancelled and completed plans do not count toward outstanding.
	assert.Equal(t, "1500.00", stats.TotalOutstanding.StringFixed(2))
}

func TestPlanService_GetSlot(t *testing.T) {
	ctx := context.Background()
	slotID := uuid.New()

	repo := new(MockPlanRepo)
	svc := service.NewPlanService(repo, 0)
	slot := &domain.InstallmentSlot{ID: slotID, Status: domain.SlotStatusPending}
	repo.On("GetSlot", ctx, slotID).Return(slot, nil)

	got, err := svc.GetSlot(ctx, slotID)
	assert.NoError(t, err)
	assert.Equal(t, slotID, got.ID)
	repo.AssertExpectations(t)
}

func TestPlanService_SubmitProof(t *testing.T) {
	ctx := context.Background()
	slotID := uuid.New()

	t.Run("DefaultsMethodToCash", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)
		slot := &domain.InstallmentSlot{ID: slotID, Status: domain.SlotStatusPending}
		repo.On("SubmitProof", ctx, slotID, "receipt.jpg", domain.PaymentMethodCash, "", "").Return(slot, nil)

		got, err := svc.SubmitProof(ctx, slotID, "receipt.jpg", "", "", "")
		assert.NoError(t, err)
		assert.Equal(t, slotID, got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyVerified", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)
		repo.On("SubmitProof", ctx, slotID, "receipt.jpg", domain.PaymentMethodBankTransfer, "tx-1", "").
			Return(nil, domain.ErrAlreadyVerified)

		_, err := svc.SubmitProof(ctx, slotID, "receipt.jpg", domain.PaymentMethodBankTransfer, "tx-1", "")
		assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
	})
}

func TestPlanService_VerifyPayment(t *testing.T) {
	ctx := context.Background()
	slotID := uuid.New()
	verifierID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)
		slot := &domain.InstallmentSlot{ID: slotID, Status: domain.SlotStatusVerified}
		plan := &domain.Plan{RemainingAmount: decimal.NewFromInt(9000), InstallmentsPaid: 1}
		repo.On("VerifySlot", ctx, slotID, verifierID, mock.AnythingOfType("time.Time")).Return(slot, plan, nil)

		gotSlot, gotPlan, err := svc.VerifyPayment(ctx, slotID, verifierID)
		assert.NoError(t, err)
		assert.Equal(t, domain.SlotStatusVerified, gotSlot.Status)
		assert.Equal(t, 1, gotPlan.InstallmentsPaid)
	})

	t.Run("AlreadyVerified", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)
		repo.On("VerifySlot", ctx, slotID, verifierID, mock.AnythingOfType("time.Time")).
			Return(nil, nil, domain.ErrAlreadyVerified)

		_, _, err := svc.VerifyPayment(ctx, slotID, verifierID)
		assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
	})
}

func TestPlanService_MarkOverduePlans(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	remaining := decimal.NewFromInt(4000)

	activePlan := func(nextDue *time.Time, start time.Time) domain.Plan {
		return domain.Plan{
			ID:              uuid.New(),
			Status:          domain.PlanStatusActive,
			RemainingAmount: remaining,
			StartDate:       start,
			NextDueDate:     nextDue,
		}
	}

	t.Run("MarksPastDueAndStalePlans", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)

		pastDue := asOf.AddDate(0, 0, -3)
		futureDue := asOf.AddDate(0, 0, 10)

		// Past next due date.
		planA := activePlan(&pastDue, asOf.AddDate(0, -2, 0))
		// Next due date in the future, but no verified payment for longer
		// than the staleness threshold.
		planB := activePlan(&futureDue, asOf.AddDate(0, 0, -(domain.OverdueThresholdDays+10)))
		// Current: recent verification and future due date.
		planC := activePlan(&futureDue, asOf.AddDate(0, -2, 0))
		recentVerify := asOf.AddDate(0, 0, -5)

		repo.On("ListActivePlans", ctx).Return([]domain.Plan{planA, planB, planC}, nil)
		repo.On("LastVerifiedAt", ctx, planA.ID).Return(nil, nil)
		repo.On("LastVerifiedAt", ctx, planB.ID).Return(nil, nil)
		repo.On("LastVerifiedAt", ctx, planC.ID).Return(&recentVerify, nil)
		repo.On("UpdateStatus", ctx, planA.ID, domain.PlanStatusOverdue).Return(nil)
		repo.On("UpdateStatus", ctx, planB.ID, domain.PlanStatusOverdue).Return(nil)

		marked, err := svc.MarkOverduePlans(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 2, marked)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "UpdateStatus", ctx, planC.ID, domain.PlanStatusOverdue)
	})

	t.Run("HonorsConfiguredThreshold", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 10)

		futureDue := asOf.AddDate(0, 0, 20)
		plan := activePlan(&futureDue, asOf.AddDate(0, 0, -15))

		repo.On("ListActivePlans", ctx).Return([]domain.Plan{plan}, nil)
		repo.On("LastVerifiedAt", ctx, plan.ID).Return(nil, nil)
		repo.On("UpdateStatus", ctx, plan.ID, domain.PlanStatusOverdue).Return(nil)

		marked, err := svc.MarkOverduePlans(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, marked)
		repo.AssertExpectations(t)
	})

	t.Run("ContinuesPastPerPlanFailures", func(t *testing.T) {
		repo := new(MockPlanRepo)
		svc := service.NewPlanService(repo, 0)

		pastDue := asOf.AddDate(0, 0, -3)
		planA := activePlan(&pastDue, asOf.AddDate(0, -2, 0))
		planB := activePlan(&pastDue, asOf.AddDate(0, -2, 0))
		repo.On("ListActivePlans", ctx).Return([]domain.Plan{planA, planB}, nil)
		repo.On("LastVerifiedAt", ctx, planA.ID).Return(nil, nil)
		repo.On("LastVerifiedAt", ctx, planB.ID).Return(nil, nil)
		repo.On("UpdateStatus", ctx, planA.ID, domain.PlanStatusOverdue).Return(domain.ErrNotFound)
		repo.On("UpdateStatus", ctx, planB.ID, domain.PlanStatusOverdue).Return(nil)

		marked, err := svc.MarkOverduePlans(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, marked)
	})
}
