package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repayment is the receipt of one successful payment.
type Repayment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    uuid.UUID       `json:"loan_id" db:"loan_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	BillIDs   []uuid.UUID     `json:"bill_ids" db:"-"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type MakePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}
