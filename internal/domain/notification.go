package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypePaymentDue NotificationType = "payment_due"
	NotificationTypeOverdue    NotificationType = "overdue"
)

// Notification is an in-app reminder row computed from ledger figures.
// The ledger owns only the numbers; delivery belongs to an external
// collaborator that reads these rows.
type Notification struct {
	ID           uuid.UUID         `json:"id"`
	ShopkeeperID uuid.UUID         `json:"shopkeeper_id"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Type         NotificationType  `json:"type"`
	IsRead       bool              `json:"is_read"`
	Attributes   map[string]string `json:"attributes"`
	CreatedAt    time.Time         `json:"created_at"`
}
