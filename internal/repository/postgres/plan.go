package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository"
)

type planRepository struct {
	db            *sql.DB
	thresholdDays int
}

// NewPlanRepository creates the plan repository. thresholdDays is the
// configured overdue threshold; zero means the engine default.
func NewPlanRepository(db *sql.DB, thresholdDays int) repository.PlanRepository {
	return &planRepository{db: db, thresholdDays: thresholdDays}
}

const planColumns = `id, shopkeeper_id, buyer_id, product_id, plan_name, total_amount, down_payment,
	remaining_amount, interest_rate, number_of_installments, installment_amount, frequency,
	start_date, end_date, next_due_date, status, installments_paid, COALESCE(notes, ''),
	created_at, updated_at`

const slotColumns = `id, plan_id, installment_number, amount, payment_method, due_date, payment_date,
	COALESCE(payment_proof, ''), COALESCE(transaction_id, ''), status, verified_by, verified_at,
	COALESCE(notes, ''), COALESCE(rejection_reason, ''), created_at, updated_at`

func (r *planRepository) CreateWithSchedule(ctx context.Context, plan *domain.Plan, slots []domain.InstallmentSlot) error {
	logger.EnterMethod("planRepository.CreateWithSchedule", "shopkeeperID", plan.ShopkeeperID, "slots", len(slots))

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if plan.ID == uuid.Nil {
			plan.ID = uuid.New()
		}
		now := time.Now()

		query := `INSERT INTO installment_plans (id, shopkeeper_id, buyer_id, product_id, plan_name,
			total_amount, down_payment, remaining_amount, interest_rate, number_of_installments,
			installment_amount, frequency, start_date, end_date, next_due_date, status,
			installments_paid, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			RETURNING created_at, updated_at`
		if err := tx.QueryRowContext(ctx, query,
			plan.ID, plan.ShopkeeperID, plan.BuyerID, nullUUID(plan.ProductID), plan.PlanName,
			plan.TotalAmount, plan.DownPayment, plan.RemainingAmount, plan.InterestRate,
			plan.NumberOfInstallments, plan.InstallmentAmount, plan.Frequency,
			plan.StartDate, plan.EndDate, nullTime(plan.NextDueDate), plan.Status,
			plan.InstallmentsPaid, plan.Notes, now, now,
		).Scan(&plan.CreatedAt, &plan.UpdatedAt); err != nil {
			return err
		}

		slotQuery := `INSERT INTO installment_slots (id, plan_id, installment_number, amount,
			payment_method, due_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		for i := range slots {
			if slots[i].ID == uuid.Nil {
				slots[i].ID = uuid.New()
			}
			slots[i].PlanID = plan.ID
			if _, err := tx.ExecContext(ctx, slotQuery,
				slots[i].ID, plan.ID, slots[i].InstallmentNumber, slots[i].Amount,
				slots[i].PaymentMethod, slots[i].DueDate, slots[i].Status, now, now,
			); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		logger.ExitMethodWithError("planRepository.CreateWithSchedule", err, "shopkeeperID", plan.ShopkeeperID)
		return err
	}
	logger.ExitMethod("planRepository.CreateWithSchedule", "planID", plan.ID)
	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM installment_plans WHERE id = $1`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr(err)
	}
	return plan, nil
}

func (r *planRepository) ListByShopkeeper(ctx context.Context, shopkeeperID uuid.UUID, status domain.PlanStatus) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM installment_plans WHERE shopkeeper_id = $1`
	args := []interface{}{shopkeeperID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryPlans(ctx, query, args...)
}

func (r *planRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM installment_plans WHERE buyer_id = $1 ORDER BY created_at DESC`
	return r.queryPlans(ctx, query, buyerID)
}

func (r *planRepository) ListActivePlans(ctx context.Context) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM installment_plans
		WHERE status = $1
		ORDER BY next_due_date NULLS LAST, created_at`
	return r.queryPlans(ctx, query, domain.PlanStatusActive)
}

func (r *planRepository) LastVerifiedAt(ctx context.Context, planID uuid.UUID) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(verified_at) FROM installment_slots WHERE plan_id = $1 AND status = $2`,
		planID, domain.SlotStatusVerified).Scan(&last)
	if err != nil {
		return nil, translateErr(err)
	}
	return timePtr(last), nil
}

func (r *planRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PlanStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE installment_plans SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
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

func (r *planRepository) GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.InstallmentSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM installment_slots WHERE id = $1`
	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, slotID))
	if err != nil {
		return nil, translateErr(err)
	}
	return slot, nil
}

func (r *planRepository) ListSlots(ctx context.Context, planID uuid.UUID) ([]domain.InstallmentSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM installment_slots WHERE plan_id = $1 ORDER BY installment_number`
	return r.querySlots(ctx, query, planID)
}

const joinedSlotColumns = `s.id, s.plan_id, s.installment_number, s.amount, s.payment_method,
	s.due_date, s.payment_date, COALESCE(s.payment_proof, ''), COALESCE(s.transaction_id, ''),
	s.status, s.verified_by, s.verified_at, COALESCE(s.notes, ''), COALESCE(s.rejection_reason, ''),
	s.created_at, s.updated_at`

func (r *planRepository) ListPendingSlots(ctx context.Context, shopkeeperID uuid.UUID) ([]domain.InstallmentSlot, error) {
	query := `SELECT ` + joinedSlotColumns + ` FROM installment_slots s
		JOIN installment_plans p ON p.id = s.plan_id
		WHERE p.shopkeeper_id = $1 AND s.status = $2 AND s.payment_proof IS NOT NULL AND s.payment_proof <> ''
		ORDER BY s.due_date`
	return r.querySlots(ctx, query, shopkeeperID, domain.SlotStatusPending)
}

func (r *planRepository) ListOverdueSlots(ctx context.Context, shopkeeperID uuid.UUID, asOf time.Time) ([]domain.InstallmentSlot, error) {
	query := `SELECT ` + joinedSlotColumns + ` FROM installment_slots s
		JOIN installment_plans p ON p.id = s.plan_id
		WHERE p.shopkeeper_id = $1 AND s.status = $2 AND s.due_date < $3
		ORDER BY s.due_date`
	return r.querySlots(ctx, query, shopkeeperID, domain.SlotStatusPending, asOf)
}

// SubmitProof attaches payment proof to a slot and moves it (back) to
// pending. Rejected slots become resubmittable this way; verified slots
// are terminal. No balance effect.
func (r *planRepository) SubmitProof(ctx context.Context, slotID uuid.UUID, proof string, method domain.PaymentMethod, transactionID, notes string) (*domain.InstallmentSlot, error) {
	logger.EnterMethod("planRepository.SubmitProof", "slotID", slotID)

	var slot *domain.InstallmentSlot
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		locked, err := lockSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if locked.Status == domain.SlotStatusVerified {
			return domain.ErrAlreadyVerified
		}

		query := `UPDATE installment_slots
			SET payment_proof = $1, payment_method = $2, transaction_id = $3, notes = $4,
			    status = $5, updated_at = $6
			WHERE id = $7
			RETURNING ` + slotColumns
		slot, err = scanSlot(tx.QueryRowContext(ctx, query,
			proof, method, transactionID, notes, domain.SlotStatusPending, time.Now(), slotID))
		return err
	})

	if err != nil {
		logger.ExitMethodWithError("planRepository.SubmitProof", err, "slotID", slotID)
		return nil, err
	}
	logger.ExitMethod("planRepository.SubmitProof", "slotID", slotID)
	return slot, nil
}

// VerifySlot marks the slot verified and applies the balance effect to the
// plan in the same transaction: remaining decreases by the slot amount
// (floored at zero), the paid counter increments, the next due date moves
// to the earliest remaining pending slot, and the plan status is
// re-derived. The plan row is locked first so two concurrent verifications
// serialize; the loser re-reads the slot and fails with ErrAlreadyVerified.
func (r *planRepository) VerifySlot(ctx context.Context, slotID, verifierID uuid.UUID, asOf time.Time) (*domain.InstallmentSlot, *domain.Plan, error) {
	logger.EnterMethod("planRepository.VerifySlot", "slotID", slotID, "verifierID", verifierID)

	var (
		slot *domain.InstallmentSlot
		plan *domain.Plan
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		locked, err := lockSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}

		lockedPlan, err := lockPlan(ctx, tx, locked.PlanID)
		if err != nil {
			return err
		}
		// Re-read under the plan lock: a concurrent verify may have
		// committed between the two lock acquisitions.
		locked, err = lockSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if locked.Status == domain.SlotStatusVerified {
			return domain.ErrAlreadyVerified
		}

		slotQuery := `UPDATE installment_slots
			SET status = $1, verified_by = $2, verified_at = $3, payment_date = $3, updated_at = $3
			WHERE id = $4
			RETURNING ` + slotColumns
		slot, err = scanSlot(tx.QueryRowContext(ctx, slotQuery,
			domain.SlotStatusVerified, verifierID, asOf, slotID))
		if err != nil {
			return err
		}

		remaining := lockedPlan.RemainingAmount.Sub(slot.Amount)
		if remaining.Sign() < 0 {
			remaining = decimal.Zero
		}

		var nextDue sql.NullTime
		if err := tx.QueryRowContext(ctx,
			`SELECT MIN(due_date) FROM installment_slots WHERE plan_id = $1 AND status = $2`,
			lockedPlan.ID, domain.SlotStatusPending).Scan(&nextDue); err != nil {
			return err
		}

		status := domain.PlanStatus(domain.DeriveStatus(domain.StatusInput{
			Remaining:     remaining,
			StartDate:     lockedPlan.StartDate,
			LastPayment:   &asOf,
			NextDueDate:   timePtr(nextDue),
			AsOf:          asOf,
			ThresholdDays: r.thresholdDays,
		}))

		planQuery := `UPDATE installment_plans
			SET remaining_amount = $1, installments_paid = installments_paid + 1,
			    next_due_date = $2, status = $3, updated_at = $4
			WHERE id = $5
			RETURNING ` + planColumns
		plan, err = scanPlan(tx.QueryRowContext(ctx, planQuery,
			remaining, nextDue, status, asOf, lockedPlan.ID))
		return err
	})

	if err != nil {
		logger.ExitMethodWithError("planRepository.VerifySlot", err, "slotID", slotID)
		return nil, nil, err
	}
	logger.ExitMethod("planRepository.VerifySlot", "slotID", slotID, "planID", plan.ID, "remaining", plan.RemainingAmount)
	return slot, plan, nil
}

// RejectSlot records a rejection reason and keeps the amount outstanding;
// the slot may be resubmitted. No balance effect.
func (r *planRepository) RejectSlot(ctx context.Context, slotID uuid.UUID, reason string) (*domain.InstallmentSlot, error) {
	logger.EnterMethod("planRepository.RejectSlot", "slotID", slotID)

	var slot *domain.InstallmentSlot
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		locked, err := lockSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if locked.Status == domain.SlotStatusVerified {
			return domain.ErrAlreadyVerified
		}

		query := `UPDATE installment_slots
			SET status = $1, rejection_reason = $2, updated_at = $3
			WHERE id = $4
			RETURNING ` + slotColumns
		slot, err = scanSlot(tx.QueryRowContext(ctx, query,
			domain.SlotStatusRejected, reason, time.Now(), slotID))
		return err
	})

	if err != nil {
		logger.ExitMethodWithError("planRepository.RejectSlot", err, "slotID", slotID)
		return nil, err
	}
	logger.ExitMethod("planRepository.RejectSlot", "slotID", slotID)
	return slot, nil
}

func (r *planRepository) queryPlans(ctx context.Context, query string, args ...interface{}) ([]domain.Plan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		plans = append(plans, *plan)
	}
	return plans, translateErr(rows.Err())
}

func (r *planRepository) querySlots(ctx context.Context, query string, args ...interface{}) ([]domain.InstallmentSlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var slots []domain.InstallmentSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		slots = append(slots, *slot)
	}
	return slots, translateErr(rows.Err())
}

func lockSlot(ctx context.Context, tx *sql.Tx, slotID uuid.UUID) (*domain.InstallmentSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM installment_slots WHERE id = $1 FOR UPDATE`
	return scanSlot(tx.QueryRowContext(ctx, query, slotID))
}

func lockPlan(ctx context.Context, tx *sql.Tx, planID uuid.UUID) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM installment_plans WHERE id = $1 FOR UPDATE`
	return scanPlan(tx.QueryRowContext(ctx, query, planID))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	plan := &domain.Plan{}
	var productID uuid.NullUUID
	var nextDue sql.NullTime
	if err := row.Scan(
		&plan.ID, &plan.ShopkeeperID, &plan.BuyerID, &productID, &plan.PlanName,
		&plan.TotalAmount, &plan.DownPayment, &plan.RemainingAmount, &plan.InterestRate,
		&plan.NumberOfInstallments, &plan.InstallmentAmount, &plan.Frequency,
		&plan.StartDate, &plan.EndDate, &nextDue, &plan.Status, &plan.InstallmentsPaid,
		&plan.Notes, &plan.CreatedAt, &plan.UpdatedAt,
	); err != nil {
		return nil, err
	}
	plan.ProductID = uuidPtr(productID)
	plan.NextDueDate = timePtr(nextDue)
	return plan, nil
}

func scanSlot(row rowScanner) (*domain.InstallmentSlot, error) {
	slot := &domain.InstallmentSlot{}
	var paymentDate, verifiedAt sql.NullTime
	var verifiedBy uuid.NullUUID
	if err := row.Scan(
		&slot.ID, &slot.PlanID, &slot.InstallmentNumber, &slot.Amount, &slot.PaymentMethod,
		&slot.DueDate, &paymentDate, &slot.PaymentProof, &slot.TransactionID, &slot.Status,
		&verifiedBy, &verifiedAt, &slot.Notes, &slot.RejectionReason,
		&slot.CreatedAt, &slot.UpdatedAt,
	); err != nil {
		return nil, err
	}
	slot.PaymentDate = timePtr(paymentDate)
	slot.VerifiedAt = timePtr(verifiedAt)
	slot.VerifiedBy = uuidPtr(verifiedBy)
	return slot, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := id.UUID
	return &u
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
