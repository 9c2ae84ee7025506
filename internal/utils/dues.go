package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
)

// CustomerDues summarizes what a customer still owes for the billing
// period containing the as-of date, across all of their open records.
type CustomerDues struct {
	MonthlyExpected decimal.Decimal
	PaidThisMonth   decimal.Decimal
	MonthlyDue      decimal.Decimal
}

// MonthStart returns midnight on the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthlyDue computes the amount still due this billing period: the
// expected monthly installments of all non-completed records, minus the
// payments already posted within the month, floored at zero.
// paidThisMonth must be the aggregate of payments posted to the
// customer's open records between the first of the month and the as-of
// date.
func MonthlyDue(records []domain.InstallmentRecord, paidThisMonth decimal.Decimal) CustomerDues {
	expected := decimal.Zero
	for _, rec := range records {
		if rec.IsCompleted {
			continue
		}
		expected = expected.Add(rec.MonthlyInstallment)
	}

	due := expected.Sub(paidThisMonth)
	if due.Sign() < 0 {
		due = decimal.Zero
	}
	return CustomerDues{MonthlyExpected: expected, PaidThisMonth: paidThisMonth, MonthlyDue: due}
}
