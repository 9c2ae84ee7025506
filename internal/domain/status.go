package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the derived lifecycle state shared by both ledger modes.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusPaused    Status = "paused"
)

// OverdueThresholdDays is the number of days without a counted payment
// after which an unfinished plan or record is considered overdue.
const OverdueThresholdDays = 35

// StatusInput carries everything DeriveStatus needs. NextDueDate is only
// set in scheduled mode; LastPayment is nil when nothing has been counted
// yet, in which case StartDate anchors the recency check. ThresholdDays
// overrides OverdueThresholdDays when positive.
type StatusInput struct {
	Remaining     decimal.Decimal
	Paused        bool
	StartDate     time.Time
	LastPayment   *time.Time
	NextDueDate   *time.Time
	AsOf          time.Time
	ThresholdDays int
}

// DeriveStatus computes the current status from balance and payment
// recency. It is a pure function: both ledger modes call it instead of
// keeping mode-specific overdue rules. A plan or record is overdue when
// its next due date has passed or when more than OverdueThresholdDays have
// elapsed since the last counted payment (since the start date when no
// payment exists) while a balance remains.
func DeriveStatus(in StatusInput) Status {
	if in.Remaining.Sign() <= 0 {
		return StatusCompleted
	}
	if in.Paused {
		return StatusPaused
	}
	asOf := truncateToDay(in.AsOf)
	if in.NextDueDate != nil && truncateToDay(*in.NextDueDate).Before(asOf) {
		return StatusOverdue
	}
	anchor := in.StartDate
	if in.LastPayment != nil {
		anchor = *in.LastPayment
	}
	threshold := in.ThresholdDays
	if threshold <= 0 {
		threshold = OverdueThresholdDays
	}
	if daysBetween(anchor, asOf) > threshold {
		return StatusOverdue
	}
	return StatusActive
}

// DaysOverdue returns the number of days since the later of the start date
// and the most recent counted payment. Negative values are clamped to zero.
func DaysOverdue(startDate time.Time, lastPayment *time.Time, asOf time.Time) int {
	anchor := startDate
	if lastPayment != nil && lastPayment.After(anchor) {
		anchor = *lastPayment
	}
	days := daysBetween(anchor, asOf)
	if days < 0 {
		return 0
	}
	return days
}

func daysBetween(from, to time.Time) int {
	return int(truncateToDay(to).Sub(truncateToDay(from)).Hours() / 24)
}
