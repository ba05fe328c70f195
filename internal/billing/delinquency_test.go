package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelinquencyTracker(t *testing.T) {
	tracker := NewDelinquencyTracker(0)
	assert.Equal(t, DefaultDelinquencyThreshold, tracker.Threshold)

	tests := []struct {
		name         string
		days         int
		paid         []int
		expectedLate int
		delinquent   bool
	}{
		{name: "nothing due yet", days: 3, expectedLate: 0, delinquent: false},
		{name: "due date itself is not late", days: 7, expectedLate: 0, delinquent: false},
		{name: "one late bill", days: 8, expectedLate: 1, delinquent: false},
		{name: "two late bills", days: 15, expectedLate: 2, delinquent: true},
		{name: "paid bills never count", days: 15, paid: []int{1}, expectedLate: 1, delinquent: false},
		{name: "all past bills paid", days: 30, paid: []int{1, 2, 3, 4}, expectedLate: 0, delinquent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bills := weeklyBills(t, 10)
			for _, seq := range tt.paid {
				bills[seq-1].IsPaid = true
			}
			ref := loanStart.AddDate(0, 0, tt.days)

			assert.Equal(t, tt.expectedLate, tracker.CountLate(bills, ref))
			assert.Equal(t, tt.delinquent, tracker.IsDelinquent(bills, ref))
		})
	}
}

func TestDelinquencyTracker_CustomThreshold(t *testing.T) {
	tracker := NewDelinquencyTracker(3)
	bills := weeklyBills(t, 10)

	assert.False(t, tracker.IsDelinquent(bills, loanStart.AddDate(0, 0, 15)))
	assert.True(t, tracker.IsDelinquent(bills, loanStart.AddDate(0, 0, 22)))
}
