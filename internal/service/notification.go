package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository"
)

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) CreateDueReminder(ctx context.Context, shopkeeperID uuid.UUID, unpaidCount int, totalDue decimal.Decimal) (*domain.Notification, error) {
	logger.EnterMethod("notificationService.CreateDueReminder", "shopkeeperID", shopkeeperID, "unpaidCount", unpaidCount)

	note := &domain.Notification{
		ID:           uuid.New(),
		ShopkeeperID: shopkeeperID,
		Title:        "Daily Payment Reminder",
		Message: fmt.Sprintf("%d customer(s) have unpaid installments totaling %s this month.",
			unpaidCount, totalDue.StringFixed(2)),
		Type: domain.NotificationTypePaymentDue,
		Attributes: map[string]string{
			"unpaid_count": fmt.Sprintf("%d", unpaidCount),
			"total_due":    totalDue.StringFixed(2),
		},
	}

	if err := s.notificationRepo.Create(ctx, note); err != nil {
		logger.ExitMethodWithError("notificationService.CreateDueReminder", err, "shopkeeperID", shopkeeperID)
		return nil, err
	}
	logger.ExitMethod("notificationService.CreateDueReminder", "notificationID", note.ID)
	return note, nil
}

func (s *notificationService) List(ctx context.Context, shopkeeperID uuid.UUID, limit, offset int) ([]domain.Notification, int, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.notificationRepo.List(ctx, shopkeeperID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, shopkeeperID uuid.UUID) error {
	return s.notificationRepo.MarkAsRead(ctx, id, shopkeeperID)
}
