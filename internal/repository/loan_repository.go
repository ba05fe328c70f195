package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

const loanColumns = `id, user_id, principal_amount, amount, tenure, interest_pct_per_annum, installment_amount, billing_interval, is_settled, created_at, updated_at`

type loanRepository struct {
	db sqlx.ExtContext
	// lockRows selects loans FOR UPDATE inside a postgres transaction
	lockRows bool
}

// NewLoanRepository reads and writes loans through db. Inside a postgres
// transaction the loan row is locked on read.
func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	_, inTx := db.(*sqlx.Tx)
	return &loanRepository{db: db, lockRows: inTx && db.DriverName() == DriverPostgres}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := r.db.Rebind(`
		INSERT INTO loans (` + loanColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.PrincipalAmount,
		loan.Amount,
		loan.Tenure,
		loan.InterestPctPerAnnum,
		loan.InstallmentAmount,
		string(loan.Interval),
		loan.IsSettled,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s", customError.ErrLoanAlreadyExists, loan.UserID)
	}

	return err
}

func (r *loanRepository) GetByUserID(ctx context.Context, userID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = ?
	`
	if r.lockRows {
		query += ` FOR UPDATE`
	}

	var loan domain.Loan
	err := sqlx.GetContext(ctx, r.db, &loan, r.db.Rebind(query), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) MarkSettled(ctx context.Context, loanID uuid.UUID) error {
	query := r.db.Rebind(`
		UPDATE loans
		SET is_settled = ?, updated_at = ?
		WHERE id = ? AND is_settled = ?
	`)

	result, err := r.db.ExecContext(ctx, query, true, time.Now().UTC(), loanID, false)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("loan %s is missing or already settled", loanID)
	}

	return nil
}

func (r *loanRepository) ListUnsettled(ctx context.Context) ([]*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE is_settled = ?
		ORDER BY created_at
	`)

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, false); err != nil {
		return nil, err
	}

	return loans, nil
}
