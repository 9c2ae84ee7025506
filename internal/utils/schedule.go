package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paylater-backend/internal/domain"
)

// PlanTerms is the computed financial shape of a new plan before any row
// is written.
type PlanTerms struct {
	RemainingAmount   decimal.Decimal
	InstallmentAmount decimal.Decimal
	EndDate           time.Time
	NextDueDate       time.Time
}

var hundred = decimal.NewFromInt(100)

// BuildPlanTerms converts principal, down payment, interest rate and
// installment count into the plan's derived amounts and dates.
//
//	base      = total - down
//	interest  = base * rate / 100
//	remaining = base + interest
//	installment = round(remaining / n, 2)
//
// The end date lands exactly n frequency units after the start date.
func BuildPlanTerms(total, down, rate decimal.Decimal, n int, frequency domain.Frequency, startDate time.Time) (PlanTerms, error) {
	if n <= 0 {
		return PlanTerms{}, fmt.Errorf("%w: number of installments must be positive, got %d", domain.ErrInvalidScheduleParameters, n)
	}
	if down.GreaterThanOrEqual(total) {
		return PlanTerms{}, fmt.Errorf("%w: down payment %s must be less than total amount %s", domain.ErrInvalidScheduleParameters, down, total)
	}
	if rate.IsNegative() {
		return PlanTerms{}, fmt.Errorf("%w: interest rate must not be negative, got %s", domain.ErrInvalidScheduleParameters, rate)
	}
	if !frequency.Valid() {
		return PlanTerms{}, fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidScheduleParameters, frequency)
	}

	base := total.Sub(down)
	interest := base.Mul(rate).Div(hundred)
	remaining := base.Add(interest)
	installment := remaining.Div(decimal.NewFromInt(int64(n))).Round(2)
	if installment.Sign() <= 0 {
		return PlanTerms{}, fmt.Errorf("%w: computed installment amount %s is not positive", domain.ErrInvalidScheduleParameters, installment)
	}

	return PlanTerms{
		RemainingAmount:   remaining,
		InstallmentAmount: installment,
		EndDate:           AddFrequency(startDate, frequency, n),
		NextDueDate:       startDate,
	}, nil
}

// BuildSchedule materializes the n installment slots for a plan. Due dates
// run start, start+1 unit, start+2 units, ...; every slot carries the same
// rounded installment amount. The division remainder is not redistributed,
// so the slot sum may differ from the plan's remaining amount by up to n-1
// cents.
func BuildSchedule(plan *domain.Plan) []domain.InstallmentSlot {
	slots := make([]domain.InstallmentSlot, 0, plan.NumberOfInstallments)
	due := plan.StartDate
	for i := 1; i <= plan.NumberOfInstallments; i++ {
		slots = append(slots, domain.InstallmentSlot{
			PlanID:            plan.ID,
			InstallmentNumber: i,
			Amount:            plan.InstallmentAmount,
			PaymentMethod:     domain.PaymentMethodCash,
			DueDate:           due,
			Status:            domain.SlotStatusPending,
		})
		due = AddFrequency(due, plan.Frequency, 1)
	}
	return slots
}

// AddFrequency advances a date by count frequency units. Weekly and
// biweekly are plain 7/14 day steps; monthly uses calendar months with the
// day-of-month clamped to the target month's length, so Jan 31 + 1 month
// lands on Feb 28 (or 29 in a leap year) rather than rolling into March.
func AddFrequency(date time.Time, frequency domain.Frequency, count int) time.Time {
	switch frequency {
	case domain.FrequencyWeekly:
		return date.AddDate(0, 0, 7*count)
	case domain.FrequencyBiweekly:
		return date.AddDate(0, 0, 14*count)
	default:
		return addMonthsClamped(date, count)
	}
}

func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, date.Location()).AddDate(0, months, 0)
	if last := daysInMonth(first.Year(), int(first.Month())); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

func daysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}
