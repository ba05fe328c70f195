package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLoanAmount(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		pct       decimal.Decimal
		expected  decimal.Decimal
	}{
		{
			name:      "standard loan calculation",
			principal: decimal.NewFromInt(5000000),
			pct:       decimal.NewFromInt(10),
			expected:  decimal.NewFromInt(5500000),
		},
		{
			name:      "zero interest rate",
			principal: decimal.NewFromInt(5000000),
			pct:       decimal.Zero,
			expected:  decimal.NewFromInt(5000000),
		},
		{
			name:      "fractional rate",
			principal: decimal.NewFromInt(1000),
			pct:       decimal.RequireFromString("12.5"),
			expected:  decimal.NewFromInt(1125),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateLoanAmount(tt.principal, tt.pct)
			assert.True(t, result.Equal(tt.expected), "Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateInstallment(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		tenure   int
		expected decimal.Decimal
	}{
		{
			name:     "standard loan calculation",
			amount:   decimal.NewFromInt(5500000),
			tenure:   50,
			expected: decimal.NewFromInt(110000), // 5,500,000 / 50 = 110,000
		},
		{
			name:     "single installment",
			amount:   decimal.NewFromInt(1100),
			tenure:   1,
			expected: decimal.NewFromInt(1100),
		},
		{
			name:     "rounded to cents",
			amount:   decimal.NewFromInt(1000),
			tenure:   3,
			expected: decimal.RequireFromString("333.33"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInstallment(tt.amount, tt.tenure)
			assert.True(t, result.Equal(tt.expected), "Expected %v, but got %v", tt.expected, result)

			// installment * tenure stays within one cent per installment of the amount
			total := result.Mul(decimal.NewFromInt(int64(tt.tenure)))
			tolerance := decimal.RequireFromString("0.01").Mul(decimal.NewFromInt(int64(tt.tenure)))
			assert.True(t, total.Sub(tt.amount).Abs().LessThanOrEqual(tolerance))
		})
	}
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	tests := []struct {
		name     string
		seqNum   int
		expected time.Time
	}{
		{name: "first installment", seqNum: 1, expected: baseDate.AddDate(0, 0, 7)},
		{name: "second installment", seqNum: 2, expected: baseDate.AddDate(0, 0, 14)},
		{name: "installment 50", seqNum: 50, expected: baseDate.AddDate(0, 0, 350)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDueDate(baseDate, tt.seqNum, week)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseReferenceDate(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	got, err := ParseReferenceDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseReferenceDate("2024-02-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseReferenceDate("2024-02-01T12:30:00+07:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 5, 30, 0, 0, time.UTC), got)

	_, err = ParseReferenceDate("not-a-date", now)
	assert.Error(t, err)
}
