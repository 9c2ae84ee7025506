package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "shopkeeperID", n.ShopkeeperID, "type", n.Type)

	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
		return err
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	query := `INSERT INTO notifications (id, shopkeeper_id, title, message, type, is_read, attributes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
	logger.DatabaseCall("INSERT", "notifications", "shopkeeperID", n.ShopkeeperID)

	err = r.db.QueryRowContext(ctx, query,
		n.ID, n.ShopkeeperID, n.Title, n.Message, n.Type, n.IsRead, attrs, time.Now(),
	).Scan(&n.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "shopkeeperID", n.ShopkeeperID)
		return translateErr(err)
	}
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, shopkeeperID uuid.UUID, limit, offset int) ([]domain.Notification, int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE shopkeeper_id = $1`, shopkeeperID).Scan(&count); err != nil {
		return nil, 0, translateErr(err)
	}

	query := `SELECT id, shopkeeper_id, title, message, type, is_read, attributes, created_at
		FROM notifications WHERE shopkeeper_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, shopkeeperID, limit, offset)
	if err != nil {
		return nil, 0, translateErr(err)
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.ShopkeeperID, &n.Title, &n.Message, &n.Type, &n.IsRead, &attrs, &n.CreatedAt); err != nil {
			return nil, 0, translateErr(err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, err
			}
		}
		notes = append(notes, n)
	}
	return notes, count, translateErr(rows.Err())
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, shopkeeperID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND shopkeeper_id = $2`, id, shopkeeperID)
	if err != nil {
		return translateErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateErr(err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
