package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository"
	"paylater-backend/internal/utils"
)

type planService struct {
	planRepo      repository.PlanRepository
	thresholdDays int
	now           func() time.Time
}

// NewPlanService creates the scheduled-mode service. overdueThresholdDays
// is the configured overdue threshold; zero means the engine default.
func NewPlanService(planRepo repository.PlanRepository, overdueThresholdDays int) PlanService {
	return &planService{planRepo: planRepo, thresholdDays: overdueThresholdDays, now: time.Now}
}

// CreatePlan validates the terms, derives the plan's financial shape and
// materializes the full slot schedule in one atomic write. Invalid
// parameters are rejected before any row is written.
func (s *planService) CreatePlan(ctx context.Context, in CreatePlanInput) (*domain.Plan, []domain.InstallmentSlot, error) {
	logger.EnterMethod("planService.CreatePlan", "shopkeeperID", in.ShopkeeperID, "buyerID", in.BuyerID)

	terms, err := utils.BuildPlanTerms(in.TotalAmount, in.DownPayment, in.InterestRate,
		in.NumberOfInstallments, in.Frequency, in.StartDate)
	if err != nil {
		logger.ExitMethodWithError("planService.CreatePlan", err, "shopkeeperID", in.ShopkeeperID)
		return nil, nil, err
	}

	nextDue := terms.NextDueDate
	plan := &domain.Plan{
		ID:                   uuid.New(),
		ShopkeeperID:         in.ShopkeeperID,
		BuyerID:              in.BuyerID,
		ProductID:            in.ProductID,
		PlanName:             in.PlanName,
		TotalAmount:          in.TotalAmount,
		DownPayment:          in.DownPayment,
		RemainingAmount:      terms.RemainingAmount,
		InterestRate:         in.InterestRate,
		NumberOfInstallments: in.NumberOfInstallments,
		InstallmentAmount:    terms.InstallmentAmount,
		Frequency:            in.Frequency,
		StartDate:            in.StartDate,
		EndDate:              terms.EndDate,
		NextDueDate:          &nextDue,
		Status:               domain.PlanStatusActive,
		Notes:                in.Notes,
	}
	slots := utils.BuildSchedule(plan)

	if err := s.planRepo.CreateWithSchedule(ctx, plan, slots); err != nil {
		logger.ExitMethodWithError("planService.CreatePlan", err, "shopkeeperID", in.ShopkeeperID)
		return nil, nil, err
	}

	logger.ExitMethod("planService.CreatePlan", "planID", plan.ID, "slots", len(slots))
	return plan, slots, nil
}

func (s *planService) GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, []domain.InstallmentSlot, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	slots, err := s.planRepo.ListSlots(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return plan, slots, nil
}

func (s *planService) GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.InstallmentSlot, error) {
	return s.planRepo.GetSlot(ctx, slotID)
}

func (s *planService) ListPlans(ctx context.Context, shopkeeperID uuid.UUID, status domain.PlanStatus) ([]domain.Plan, error) {
	return s.planRepo.ListByShopkeeper(ctx, shopkeeperID, status)
}

func (s *planService) ListBuyerPlans(ctx context.Context, buyerID uuid.UUID) ([]domain.Plan, error) {
	return s.planRepo.ListByBuyer(ctx, buyerID)
}

func (s *planService) GetPlanStats(ctx context.Context, shopkeeperID uuid.UUID) (*PlanStats, error) {
	plans, err := s.planRepo.ListByShopkeeper(ctx, shopkeeperID, "")
	if err != nil {
		return nil, err
	}

	stats := &PlanStats{TotalPlans: len(plans), TotalOutstanding: decimal.Zero}
	for _, p := range plans {
		switch p.Status {
		case domain.PlanStatusActive:
			stats.ActivePlans++
		case domain.PlanStatusCompleted:
			stats.CompletedPlans++
		case domain.PlanStatusOverdue:
			stats.OverduePlans++
		}
		if p.Status != domain.PlanStatusCompleted && p.Status != domain.PlanStatusCancelled {
			stats.TotalOutstanding = stats.TotalOutstanding.Add(p.RemainingAmount)
		}
	}
	return stats, nil
}

func (s *planService) SubmitProof(ctx context.Context, slotID uuid.UUID, proof string, method domain.PaymentMethod, transactionID, notes string) (*domain.InstallmentSlot, error) {
	logger.EnterMethod("planService.SubmitProof", "slotID", slotID)

	if method == "" {
		method = domain.PaymentMethodCash
	}
	slot, err := s.planRepo.SubmitProof(ctx, slotID, proof, method, transactionID, notes)
	if err != nil {
		logger.ExitMethodWithError("planService.SubmitProof", err, "slotID", slotID)
		return nil, err
	}
	logger.ExitMethod("planService.SubmitProof", "slotID", slotID)
	return slot, nil
}

func (s *planService) VerifyPayment(ctx context.Context, slotID, verifierID uuid.UUID) (*domain.InstallmentSlot, *domain.Plan, error) {
	logger.EnterMethod("planService.VerifyPayment", "slotID", slotID, "verifierID", verifierID)

	slot, plan, err := s.planRepo.VerifySlot(ctx, slotID, verifierID, s.now())
	if err != nil {
		logger.ExitMethodWithError("planService.VerifyPayment", err, "slotID", slotID)
		return nil, nil, err
	}
	logger.ExitMethod("planService.VerifyPayment", "slotID", slotID,
		"remaining", plan.RemainingAmount, "installmentsPaid", plan.InstallmentsPaid)
	return slot, plan, nil
}

func (s *planService) RejectPayment(ctx context.Context, slotID uuid.UUID, reason string) (*domain.InstallmentSlot, error) {
	logger.EnterMethod("planService.RejectPayment", "slotID", slotID)

	slot, err := s.planRepo.RejectSlot(ctx, slotID, reason)
	if err != nil {
		logger.ExitMethodWithError("planService.RejectPayment", err, "slotID", slotID)
		return nil, err
	}
	logger.ExitMethod("planService.RejectPayment", "slotID", slotID)
	return slot, nil
}

func (s *planService) ListPendingPayments(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error) {
	return s.planRepo.ListPendingSlots(ctx, shopkeeperID)
}

func (s *planService) ListOverduePayments(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error) {
	return s.planRepo.ListOverdueSlots(ctx, shopkeeperID, s.now())
}

// MarkOverduePlans re-derives the status of every active plan and flags
// the ones that come back overdue, whether from a passed due date or from
// payment staleness. Used by the nightly sweep; returns how many plans
// were flagged.
func (s *planService) MarkOverduePlans(ctx context.Context, asOf time.Time) (int, error) {
	logger.EnterMethod("planService.MarkOverduePlans", "asOf", asOf)

	plans, err := s.planRepo.ListActivePlans(ctx)
	if err != nil {
		logger.ExitMethodWithError("planService.MarkOverduePlans", err)
		return 0, err
	}

	marked := 0
	for _, p := range plans {
		last, err := s.planRepo.LastVerifiedAt(ctx, p.ID)
		if err != nil {
			logger.Error("failed to read last verification", "planID", p.ID, "error", err)
			continue
		}
		status := domain.DeriveStatus(domain.StatusInput{
			Remaining:     p.RemainingAmount,
			StartDate:     p.StartDate,
			LastPayment:   last,
			NextDueDate:   p.NextDueDate,
			AsOf:          asOf,
			ThresholdDays: s.thresholdDays,
		})
		if status != domain.StatusOverdue {
			continue
		}
		if err := s.planRepo.UpdateStatus(ctx, p.ID, domain.PlanStatusOverdue); err != nil {
			logger.Error("failed to mark plan overdue", "planID", p.ID, "error", err)
			continue
		}
		marked++
	}

	logger.ExitMethod("planService.MarkOverduePlans", "marked", marked)
	return marked, nil
}
