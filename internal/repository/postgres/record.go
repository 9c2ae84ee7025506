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

type recordRepository struct {
	db            *sql.DB
	thresholdDays int
}

// NewRecordRepository creates the record repository. thresholdDays is the
// configured overdue threshold; zero means the engine default.
func NewRecordRepository(db *sql.DB, thresholdDays int) repository.RecordRepository {
	return &recordRepository{db: db, thresholdDays: thresholdDays}
}

const recordColumns = `id, customer_id, shopkeeper_id, COALESCE(product_name, ''),
	COALESCE(product_description, ''), total_cost, advance_payment, monthly_installment,
	remaining_amount, total_paid, start_date, default_period, interest_rate, status,
	is_completed, COALESCE(notes, ''), created_at, updated_at`

const paymentColumns = `id, record_id, amount_paid, payment_date, COALESCE(notes, ''), created_at`

func (r *recordRepository) Create(ctx context.Context, record *domain.InstallmentRecord) error {
	logger.EnterMethod("recordRepository.Create", "customerID", record.CustomerID)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()

	query := `INSERT INTO installment_records (id, customer_id, shopkeeper_id, product_name,
		product_description, total_cost, advance_payment, monthly_installment, remaining_amount,
		total_paid, start_date, default_period, interest_rate, status, is_completed, notes,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		record.ID, record.CustomerID, record.ShopkeeperID, record.ProductName,
		record.ProductDescription, record.TotalCost, record.AdvancePayment,
		record.MonthlyInstallment, record.RemainingAmount, record.TotalPaid,
		record.StartDate, record.DefaultPeriod, record.InterestRate, record.Status,
		record.IsCompleted, record.Notes, now, now,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		logger.ExitMethodWithError("recordRepository.Create", err, "customerID", record.CustomerID)
		return translateErr(err)
	}
	logger.ExitMethod("recordRepository.Create", "recordID", record.ID)
	return nil
}

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM installment_records WHERE id = $1`
	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr(err)
	}
	return record, nil
}

func (r *recordRepository) ListByShopkeeper(ctx context.Context, shopkeeperID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM installment_records WHERE shopkeeper_id = $1`
	args := []interface{}{shopkeeperID}
	if completed != nil {
		query += ` AND is_completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryRecords(ctx, query, args...)
}

func (r *recordRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, completed *bool) ([]domain.InstallmentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM installment_records WHERE customer_id = $1`
	args := []interface{}{customerID}
	if completed != nil {
		query += ` AND is_completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryRecords(ctx, query, args...)
}

func (r *recordRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RecordStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE installment_records SET status = $1, updated_at = $2 WHERE id = $3`,
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

// CreatePayment inserts the payment and recomputes the owning record from
// the full payment set in one transaction. The record row is locked first
// so concurrent postings serialize and the aggregation never reads a
// half-applied state.
func (r *recordRepository) CreatePayment(ctx context.Context, payment *domain.PaymentRecord, asOf time.Time) (*domain.InstallmentRecord, error) {
	logger.EnterMethod("recordRepository.CreatePayment", "recordID", payment.RecordID, "amount", payment.AmountPaid)

	var record *domain.InstallmentRecord
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		locked, err := lockRecord(ctx, tx, payment.RecordID)
		if err != nil {
			return err
		}
		if locked.IsCompleted {
			return domain.ErrRecordCompleted
		}

		if payment.ID == uuid.Nil {
			payment.ID = uuid.New()
		}
		query := `INSERT INTO payment_records (id, record_id, amount_paid, payment_date, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
		if err := tx.QueryRowContext(ctx, query,
			payment.ID, payment.RecordID, payment.AmountPaid, payment.PaymentDate,
			payment.Notes, time.Now(),
		).Scan(&payment.CreatedAt); err != nil {
			return err
		}

		record, err = recomputeRecord(ctx, tx, locked, asOf, r.thresholdDays)
		return err
	})

	if err != nil {
		logger.ExitMethodWithError("recordRepository.CreatePayment", err, "recordID", payment.RecordID)
		return nil, err
	}
	logger.ExitMethod("recordRepository.CreatePayment", "paymentID", payment.ID, "remaining", record.RemainingAmount)
	return record, nil
}

// DeletePayment removes the payment and re-runs the same recomputation
// over the surviving payment set. A record that had been completed flips
// back to open when the deletion reopens a balance.
func (r *recordRepository) DeletePayment(ctx context.Context, paymentID uuid.UUID, asOf time.Time) (*domain.InstallmentRecord, error) {
	logger.EnterMethod("recordRepository.DeletePayment", "paymentID", paymentID)

	var record *domain.InstallmentRecord
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var recordID uuid.UUID
		if err := tx.QueryRowContext(ctx,
			`SELECT record_id FROM payment_records WHERE id = $1`, paymentID).Scan(&recordID); err != nil {
			return err
		}

		locked, err := lockRecord(ctx, tx, recordID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM payment_records WHERE id = $1`, paymentID)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}

		record, err = recomputeRecord(ctx, tx, locked, asOf, r.thresholdDays)
		return err
	})

	if err != nil {
		logger.ExitMethodWithError("recordRepository.DeletePayment", err, "paymentID", paymentID)
		return nil, err
	}
	logger.ExitMethod("recordRepository.DeletePayment", "paymentID", paymentID, "remaining", record.RemainingAmount)
	return record, nil
}

func (r *recordRepository) GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records WHERE id = $1`
	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		return nil, translateErr(err)
	}
	return payment, nil
}

func (r *recordRepository) ListPayments(ctx context.Context, recordID uuid.UUID) ([]domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records WHERE record_id = $1
		ORDER BY payment_date DESC, created_at DESC`
	return r.queryPayments(ctx, query, recordID)
}

func (r *recordRepository) SumPaymentsSince(ctx context.Context, customerID uuid.UUID, since, until time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(p.amount_paid), 0) FROM payment_records p
		JOIN installment_records r ON r.id = p.record_id
		WHERE r.customer_id = $1 AND r.is_completed = FALSE
		  AND p.payment_date >= $2 AND p.payment_date <= $3`
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, customerID, since, until).Scan(&total); err != nil {
		return decimal.Zero, translateErr(err)
	}
	return total, nil
}

func (r *recordRepository) LastPaymentDate(ctx context.Context, recordID uuid.UUID) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(payment_date) FROM payment_records WHERE record_id = $1`, recordID).Scan(&last)
	if err != nil {
		return nil, translateErr(err)
	}
	return timePtr(last), nil
}

// recomputeRecord derives the record's totals and status from the live
// payment set. It is a pure aggregation over the child rows: no cached
// counter is trusted, so running it twice with the same payments yields
// identical state.
func recomputeRecord(ctx context.Context, tx *sql.Tx, record *domain.InstallmentRecord, asOf time.Time, thresholdDays int) (*domain.InstallmentRecord, error) {
	var total decimal.Decimal
	var last sql.NullTime
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_paid), 0), MAX(payment_date) FROM payment_records WHERE record_id = $1`,
		record.ID).Scan(&total, &last); err != nil {
		return nil, err
	}

	record.Recompute(total, timePtr(last), asOf, thresholdDays)

	query := `UPDATE installment_records
		SET total_paid = $1, remaining_amount = $2, is_completed = $3, status = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + recordColumns
	return scanRecord(tx.QueryRowContext(ctx, query,
		record.TotalPaid, record.RemainingAmount, record.IsCompleted, record.Status, asOf, record.ID))
}

func (r *recordRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]domain.InstallmentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var records []domain.InstallmentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		records = append(records, *record)
	}
	return records, translateErr(rows.Err())
}

func (r *recordRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]domain.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var payments []domain.PaymentRecord
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		payments = append(payments, *payment)
	}
	return payments, translateErr(rows.Err())
}

func lockRecord(ctx context.Context, tx *sql.Tx, recordID uuid.UUID) (*domain.InstallmentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM installment_records WHERE id = $1 FOR UPDATE`
	return scanRecord(tx.QueryRowContext(ctx, query, recordID))
}

func scanRecord(row rowScanner) (*domain.InstallmentRecord, error) {
	record := &domain.InstallmentRecord{}
	if err := row.Scan(
		&record.ID, &record.CustomerID, &record.ShopkeeperID, &record.ProductName,
		&record.ProductDescription, &record.TotalCost, &record.AdvancePayment,
		&record.MonthlyInstallment, &record.RemainingAmount, &record.TotalPaid,
		&record.StartDate, &record.DefaultPeriod, &record.InterestRate, &record.Status,
		&record.IsCompleted, &record.Notes, &record.CreatedAt, &record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return record, nil
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	payment := &domain.PaymentRecord{}
	if err := row.Scan(
		&payment.ID, &payment.RecordID, &payment.AmountPaid, &payment.PaymentDate,
		&payment.Notes, &payment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return payment, nil
}
