package proration

import (
	"fmt"
	"time"
)

// PeriodProration is the breakdown of a partial billing period. A billing
// period is the calendar month of the start date; the daily rate divides
// the period rate by that month's length.
type PeriodProration struct {
	PeriodLengthDays int     `json:"period_length_days"`
	DayOfPeriod      int     `json:"day_of_period"`
	DaysRemaining    int     `json:"days_remaining"`
	DailyRate        float64 `json:"daily_rate"`
	ProratedAmount   float64 `json:"prorated_amount"`
	IsFullPeriod     bool    `json:"is_full_period"`
}

// MoveInBreakdown shows how a move-in deposit is applied across the first
// period's cost, the security deposit, and the next period.
type MoveInBreakdown struct {
	MoveInDeposit        float64 `json:"move_in_deposit"`
	FirstPeriodCost      float64 `json:"first_period_cost"`
	Remainder            float64 `json:"remainder"`
	TowardSecurity       float64 `json:"toward_security"`
	TowardNextPeriod     float64 `json:"toward_next_period"`
	SecurityRemaining    float64 `json:"security_remaining"`
	TotalDueAtActivation float64 `json:"total_due_at_activation"`

	// RemainderClamped is set when the raw remainder came out negative and
	// was clamped to zero. That combination is not business-reachable with
	// a move-in deposit of one period's rate; callers should log it.
	RemainderClamped bool `json:"-"`
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}

// DaysInMonth returns the number of days in a given month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// ProratePeriod computes the charge for the remainder of the billing
// period containing startDate, the start day included. A start on the
// first of the month is a full period and charges exactly periodRate.
func ProratePeriod(startDate time.Time, periodRate float64) (PeriodProration, error) {
	if startDate.IsZero() {
		return PeriodProration{}, fmt.Errorf("start date is required")
	}
	if periodRate < 0 {
		return PeriodProration{}, fmt.Errorf("period rate must not be negative, got %.2f", periodRate)
	}

	length := DaysInMonth(startDate.Year(), startDate.Month())
	day := startDate.Day()
	remaining := length - day + 1
	daily := Round2(periodRate / float64(length))
	full := day == 1

	amount := Round2(daily * float64(remaining))
	if full {
		amount = periodRate
	}

	return PeriodProration{
		PeriodLengthDays: length,
		DayOfPeriod:      day,
		DaysRemaining:    remaining,
		DailyRate:        daily,
		ProratedAmount:   amount,
		IsFullPeriod:     full,
	}, nil
}

// ApplyMoveInDeposit applies a move-in deposit of one period's rate
// against the prorated first-period cost and then the security deposit.
// Whatever is left after the security deposit carries to the next period.
func ApplyMoveInDeposit(startDate time.Time, periodRate, securityDeposit float64) (MoveInBreakdown, error) {
	if securityDeposit < 0 {
		return MoveInBreakdown{}, fmt.Errorf("security deposit must not be negative, got %.2f", securityDeposit)
	}

	first, err := ProratePeriod(startDate, periodRate)
	if err != nil {
		return MoveInBreakdown{}, err
	}

	moveIn := periodRate
	remainder := Round2(moveIn - first.ProratedAmount)
	clamped := false
	if remainder < 0 {
		remainder = 0
		clamped = true
	}

	towardSecurity := remainder
	if towardSecurity > securityDeposit {
		towardSecurity = securityDeposit
	}
	towardNext := Round2(remainder - towardSecurity)
	securityRemaining := Round2(securityDeposit - towardSecurity)

	return MoveInBreakdown{
		MoveInDeposit:        moveIn,
		FirstPeriodCost:      first.ProratedAmount,
		Remainder:            remainder,
		TowardSecurity:       towardSecurity,
		TowardNextPeriod:     towardNext,
		SecurityRemaining:    securityRemaining,
		TotalDueAtActivation: Round2(moveIn + securityRemaining),
		RemainderClamped:     clamped,
	}, nil
}

// ApplyCredits reduces an amount due by previously recorded credits,
// never below zero.
func ApplyCredits(depositAmountDue float64, priorCredits []float64) float64 {
	due := depositAmountDue
	for _, c := range priorCredits {
		due -= c
	}
	if due < 0 {
		due = 0
	}
	return Round2(due)
}
