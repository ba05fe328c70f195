package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateLoanAmount applies flat simple interest to the principal
// Formula: Principal * (1 + pct/100)
func CalculateLoanAmount(principal decimal.Decimal, interestPctPerAnnum decimal.Decimal) decimal.Decimal {
	return principal.Mul(hundred.Add(interestPctPerAnnum)).Div(hundred)
}

// CalculateInstallment splits the total amount evenly across the tenure
// Formula: Amount / Tenure, rounded to 2 decimal places
func CalculateInstallment(amount decimal.Decimal, tenure int) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(int64(tenure))).Round(2)
}

// CalculateDueDate calculates the due date for a specific installment
// Installment 1 is due one step after start, installment 2 two steps after, etc.
func CalculateDueDate(start time.Time, seqNum int, step time.Duration) time.Time {
	return start.Add(time.Duration(seqNum) * step)
}

// ParseReferenceDate parses an RFC3339 or YYYY-MM-DD date, falling back to now when s is empty.
func ParseReferenceDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
