package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill represents one scheduled installment of a loan
type Bill struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    uuid.UUID       `json:"loan_id" db:"loan_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	SeqNum    int             `json:"seq_num" db:"seq_num"`
	DueDate   time.Time       `json:"due_date" db:"due_date"`
	AmountDue decimal.Decimal `json:"amount_due" db:"amount_due"`
	IsPaid    bool            `json:"is_paid" db:"is_paid"`
}

// DueWindow is what is payable right now for a loan.
type DueWindow struct {
	// DueDate is the farthest due date inside the window; zero when BillCount is 0.
	DueDate         time.Time       `json:"-"`
	PayableAmount   decimal.Decimal `json:"payable_amount"`
	BillCount       int             `json:"bill_count"`
	AmountPerBill   decimal.Decimal `json:"amount_per_bill"`
	FirstBillSeqNum int             `json:"first_bill_seq_num"`
}

// DueDateString renders the due date, or NotApplicable for an empty window.
func (w DueWindow) DueDateString() string {
	if w.BillCount == 0 {
		return NotApplicable
	}
	return w.DueDate.UTC().Format(time.RFC3339)
}

// LastBillSeqNum is the sequence number of the last bill in the window.
func (w DueWindow) LastBillSeqNum() int {
	if w.BillCount == 0 {
		return 0
	}
	return w.FirstBillSeqNum + w.BillCount - 1
}
