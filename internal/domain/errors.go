package domain

import "errors"

// Sentinel errors for the ledger core. Callers match with errors.Is; the
// repository layer translates driver-level failures into these before they
// cross the service boundary.
var (
	// ErrInvalidScheduleParameters rejects plan creation input before any
	// row is written (bad installment count, down payment >= total, or a
	// non-positive computed installment amount).
	ErrInvalidScheduleParameters = errors.New("invalid schedule parameters")

	// ErrInvalidAmount rejects a non-positive payment amount.
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")

	// ErrAlreadyVerified is returned for any mutation attempted on a slot
	// that already reached its terminal verified state.
	ErrAlreadyVerified = errors.New("payment has already been verified")

	// ErrRecordCompleted rejects payment postings against a record whose
	// remaining balance already reached zero.
	ErrRecordCompleted = errors.New("installment record is already completed")

	// ErrNotFound is returned for unknown plan, slot, record, payment or
	// notification identifiers.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification signals a transaction conflict on the same
	// plan or record. The operation left no partial state; the caller may
	// retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)
