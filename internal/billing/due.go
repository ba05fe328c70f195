package billing

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

// EnsureOrdered checks that bills are ordered by strictly increasing seqNum.
func EnsureOrdered(bills []*domain.Bill) error {
	for i := 1; i < len(bills); i++ {
		if bills[i].SeqNum <= bills[i-1].SeqNum {
			return fmt.Errorf("%w: seq %d follows %d", customError.ErrBillsOutOfOrder, bills[i].SeqNum, bills[i-1].SeqNum)
		}
	}
	return nil
}

func bySeqNum(a, b *domain.Bill) int {
	return cmp.Compare(a.SeqNum, b.SeqNum)
}

// ordered returns bills sorted by seqNum, copying only when needed.
func ordered(bills []*domain.Bill) []*domain.Bill {
	if slices.IsSortedFunc(bills, bySeqNum) {
		return bills
	}
	sorted := slices.Clone(bills)
	slices.SortFunc(sorted, bySeqNum)
	return sorted
}

// ComputeNextDue returns the payable window: unpaid bills due before ref + 7 days.
// DueDate is the due date of the last bill inside the window.
func ComputeNextDue(bills []*domain.Bill, ref time.Time, installmentAmount decimal.Decimal) domain.DueWindow {
	windowEnd := ref.Add(Week)
	window := domain.DueWindow{
		PayableAmount: decimal.Zero,
		AmountPerBill: installmentAmount,
	}

	for _, bill := range ordered(bills) {
		if bill.IsPaid || !bill.DueDate.Before(windowEnd) {
			continue
		}
		if window.BillCount == 0 {
			window.FirstBillSeqNum = bill.SeqNum
		}
		window.BillCount++
		window.DueDate = bill.DueDate
		window.PayableAmount = window.PayableAmount.Add(bill.AmountDue)
	}
	return window
}

// OutstandingBalance sums the amount due of every unpaid bill.
func OutstandingBalance(bills []*domain.Bill) decimal.Decimal {
	total := decimal.Zero
	for _, bill := range bills {
		if !bill.IsPaid {
			total = total.Add(bill.AmountDue)
		}
	}
	return total
}
