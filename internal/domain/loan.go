package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Interval is the billing period tag declared on a loan.
type Interval string

const (
	IntervalWeekly  Interval = "WEEKLY"
	IntervalMonthly Interval = "MONTHLY"
)

// ParseInterval accepts the enum value case-insensitively.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToUpper(strings.TrimSpace(s))) {
	case IntervalWeekly:
		return IntervalWeekly, nil
	case IntervalMonthly:
		return IntervalMonthly, nil
	}
	return "", fmt.Errorf("unknown interval %q", s)
}

// Loan represents a loan entity
type Loan struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	UserID              string          `json:"user_id" db:"user_id"`
	PrincipalAmount     decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	Amount              decimal.Decimal `json:"amount" db:"amount"`
	Tenure              int             `json:"tenure" db:"tenure"`
	InterestPctPerAnnum decimal.Decimal `json:"interest_pct_per_annum" db:"interest_pct_per_annum"`
	InstallmentAmount   decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	Interval            Interval        `json:"interval" db:"billing_interval"`
	IsSettled           bool            `json:"is_settled" db:"is_settled"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

// CreateLoanRequest leaves omitted terms nil so they can be told apart from explicit zeros.
type CreateLoanRequest struct {
	Principal           *decimal.Decimal `json:"principal" validate:"gt=0"`
	Interval            string           `json:"interval" validate:"omitempty,oneof=WEEKLY MONTHLY weekly monthly Weekly Monthly"`
	Tenure              *int             `json:"tenure" validate:"gt=0"`
	InterestPctPerAnnum *decimal.Decimal `json:"interest_pct_per_annum" validate:"gte=0"`
}

type CreateLoanResponse struct {
	Loan  *Loan   `json:"loan"`
	Bills []*Bill `json:"bills"`
}

// NotApplicable is reported as the next due date when nothing is payable.
const NotApplicable = "N/A"

// LoanStatus is the read-only health view of a loan at a reference date.
type LoanStatus struct {
	Loan               *Loan           `json:"loan"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	LatePaymentCount   int             `json:"late_payment_count"`
	IsDelinquent       bool            `json:"is_delinquent"`
	NextDueDate        string          `json:"next_due_date"`
	PayableAmount      decimal.Decimal `json:"payable_amount"`
	BillCount          int             `json:"bill_count"`
	FirstBillSeqNum    int             `json:"first_bill_seq_num"`
}

// DelinquencyReport is produced by the periodic delinquency sweep.
type DelinquencyReport struct {
	UserID           string `json:"user_id"`
	LoanID           string `json:"loan_id"`
	LatePaymentCount int    `json:"late_payment_count"`
}
