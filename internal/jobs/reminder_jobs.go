package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/logger"
)

// SendDueReminders computes this month's outstanding dues for every
// shopkeeper's customers and writes one reminder notification per
// shopkeeper with unpaid customers. The ledger owns only the figures;
// delivering the notification is the consumer's job.
func (jr *JobRunner) SendDueReminders() {
	jr.runWithRecovery("SendDueReminders", func() {
		ctx := context.Background()

		rows, err := jr.db.QueryContext(ctx,
			`SELECT DISTINCT shopkeeper_id, customer_id FROM installment_records WHERE is_completed = FALSE`)
		if err != nil {
			logger.Error("Failed to list open installment records", "error", err)
			return
		}
		defer rows.Close()

		type pair struct{ shopkeeper, customer uuid.UUID }
		var pairs []pair
		for rows.Next() {
			var p pair
			if err := rows.Scan(&p.shopkeeper, &p.customer); err != nil {
				logger.Error("Failed to scan record row", "error", err)
				return
			}
			pairs = append(pairs, p)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Failed reading record rows", "error", err)
			return
		}

		unpaidByShopkeeper := make(map[uuid.UUID]int)
		dueByShopkeeper := make(map[uuid.UUID]decimal.Decimal)
		for _, p := range pairs {
			dues, err := jr.services.Record.GetCustomerDues(ctx, p.customer)
			if err != nil {
				logger.Error("Failed to compute customer dues",
					"customer_id", p.customer, "error", err)
				continue
			}
			if dues.MonthlyDue.Sign() <= 0 {
				continue
			}
			unpaidByShopkeeper[p.shopkeeper]++
			dueByShopkeeper[p.shopkeeper] = dueByShopkeeper[p.shopkeeper].Add(dues.MonthlyDue)
		}

		sent := 0
		for shopkeeperID, count := range unpaidByShopkeeper {
			if _, err := jr.services.Notification.CreateDueReminder(ctx,
				shopkeeperID, count, dueByShopkeeper[shopkeeperID]); err != nil {
				logger.Error("Failed to create due reminder",
					"shopkeeper_id", shopkeeperID, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Due reminders created", "count", sent)
	})
}

// MarkOverduePlans flags active scheduled plans whose next due date has
// passed.
func (jr *JobRunner) MarkOverduePlans() {
	jr.runWithRecovery("MarkOverduePlans", func() {
		ctx := context.Background()

		marked, err := jr.services.Plan.MarkOverduePlans(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to mark overdue plans", "error", err)
			return
		}

		logger.Info("Overdue plans marked", "count", marked)
	})
}
