package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"paylater-backend/internal/domain"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.PlanRepository
	repository.RecordRepository
	repository.NotificationRepository
}

// NewStore bundles the repositories over one connection pool.
// overdueThresholdDays comes from the ledger configuration; zero means the
// engine default.
func NewStore(db *sql.DB, overdueThresholdDays int) *Store {
	return &Store{
		db:                     db,
		PlanRepository:         NewPlanRepository(db, overdueThresholdDays),
		RecordRepository:       NewRecordRepository(db, overdueThresholdDays),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// withTx runs fn inside a transaction and rolls back on any error or
// panic. Commit errors are translated like any other failure, so a caller
// never observes partially applied ledger state.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return translateErr(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", "error", rbErr)
		}
		return translateErr(err)
	}
	return translateErr(tx.Commit())
}

// translateErr maps driver-level failures onto the domain error taxonomy.
// Serialization failures and deadlocks mean two mutations raced on the
// same plan/record row; the caller may retry.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return domain.ErrConcurrentModification
		}
	}
	return err
}
