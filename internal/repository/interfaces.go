package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/loan-ledger/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create stores a new loan; a second loan for the same user is rejected
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByUserID retrieves the loan of a user, or errors.ErrLoanNotFound
	GetByUserID(ctx context.Context, userID string) (*domain.Loan, error)

	// MarkSettled flips the settled flag of an unsettled loan
	MarkSettled(ctx context.Context, loanID uuid.UUID) error

	// ListUnsettled retrieves every loan that still has bills to pay
	ListUnsettled(ctx context.Context) ([]*domain.Loan, error)
}

// BillFilter selects bills of one loan. Zero seq bounds are open.
type BillFilter struct {
	LoanID     uuid.UUID
	FromSeqNum int
	ToSeqNum   int
	OnlyUnpaid bool
}

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// CreateBatch stores a whole schedule; either every bill is stored or none
	CreateBatch(ctx context.Context, bills []*domain.Bill) error

	// Find retrieves bills ordered by seq number ascending
	Find(ctx context.Context, filter BillFilter) ([]*domain.Bill, error)

	// MarkPaid flips unpaid bills matching filter and returns how many changed
	MarkPaid(ctx context.Context, filter BillFilter) (int64, error)
}

// RepaymentRepository defines the interface for repayment data operations
type RepaymentRepository interface {
	// Create stores a repayment and its bill references; a bill may be referenced once
	Create(ctx context.Context, repayment *domain.Repayment) error

	// ListByUserID retrieves repayments of a user, oldest first
	ListByUserID(ctx context.Context, userID string) ([]*domain.Repayment, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Loans() LoanRepository
	Bills() BillRepository
	Repayments() RepaymentRepository
}

// UnitOfWork is an atomic set of writes. End must be called exactly once,
// after Commit or Abort or on its own; it aborts anything not committed.
type UnitOfWork interface {
	Repositories
	Commit() error
	Abort() error
	End()
}

// Store is the persistence collaborator of the ledger.
type Store interface {
	Repositories
	Begin(ctx context.Context) (UnitOfWork, error)
	Ping(ctx context.Context) error
	Close() error
}
