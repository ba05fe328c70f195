package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

// Allocation is the contiguous bill range a payment settles.
type Allocation struct {
	FromSeqNum  int
	ToSeqNum    int
	BillCount   int
	Amount      decimal.Decimal
	SettlesLoan bool
}

// CheckPayable rejects payments against a settled loan.
func CheckPayable(loan *domain.Loan) error {
	if loan.IsSettled {
		return customError.WrapLoanSettled()
	}
	return nil
}

// Allocate validates amount against the due window and picks the bills it pays.
// Only an exact match of the payable amount is accepted.
func Allocate(loan *domain.Loan, window domain.DueWindow, amount decimal.Decimal) (Allocation, error) {
	if err := CheckPayable(loan); err != nil {
		return Allocation{}, err
	}
	if window.PayableAmount.IsZero() {
		return Allocation{}, customError.WrapBillAlreadyPaid()
	}
	if !amount.Equal(window.PayableAmount) {
		return Allocation{}, customError.WrapInvalidPaymentAmount(window.PayableAmount)
	}
	if !window.AmountPerBill.IsPositive() {
		return Allocation{}, fmt.Errorf("installment amount must be positive, got %s", window.AmountPerBill)
	}

	count := amount.Div(window.AmountPerBill).Round(0).IntPart()
	if int(count) != window.BillCount {
		return Allocation{}, fmt.Errorf("payment covers %d installments but %d are due", count, window.BillCount)
	}

	to := window.LastBillSeqNum()
	return Allocation{
		FromSeqNum:  window.FirstBillSeqNum,
		ToSeqNum:    to,
		BillCount:   window.BillCount,
		Amount:      amount,
		SettlesLoan: to == loan.Tenure,
	}, nil
}
