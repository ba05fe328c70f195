package billing

import (
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"
)

// DefaultDelinquencyThreshold is the number of late bills that makes a loan delinquent.
const DefaultDelinquencyThreshold = 2

// DelinquencyTracker counts overdue bills.
type DelinquencyTracker struct {
	Threshold int
}

func NewDelinquencyTracker(threshold int) DelinquencyTracker {
	if threshold <= 0 {
		threshold = DefaultDelinquencyThreshold
	}
	return DelinquencyTracker{Threshold: threshold}
}

// CountLate counts unpaid bills due strictly before ref.
func (DelinquencyTracker) CountLate(bills []*domain.Bill, ref time.Time) int {
	late := 0
	for _, bill := range bills {
		if !bill.IsPaid && bill.DueDate.Before(ref) {
			late++
		}
	}
	return late
}

func (t DelinquencyTracker) IsDelinquent(bills []*domain.Bill, ref time.Time) bool {
	return t.CountLate(bills, ref) >= t.Threshold
}
