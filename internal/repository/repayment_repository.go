package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

type repaymentRepository struct {
	db sqlx.ExtContext
}

func NewRepaymentRepository(db sqlx.ExtContext) RepaymentRepository {
	return &repaymentRepository{db: db}
}

// Create should run inside a unit of work so the repayment and its bill links land together.
func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	query := r.db.Rebind(`
		INSERT INTO repayments (id, loan_id, user_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		repayment.ID,
		repayment.LoanID,
		repayment.UserID,
		repayment.Amount,
		repayment.CreatedAt,
	)
	if err != nil {
		return err
	}

	link := r.db.Rebind(`INSERT INTO repayment_bills (bill_id, repayment_id) VALUES (?, ?)`)
	for _, billID := range repayment.BillIDs {
		if _, err := r.db.ExecContext(ctx, link, billID, repayment.ID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: bill %s", customError.ErrBillAlreadyReferenced, billID)
			}
			return err
		}
	}

	return nil
}

func (r *repaymentRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Repayment, error) {
	query := r.db.Rebind(`
		SELECT id, loan_id, user_id, amount, created_at
		FROM repayments
		WHERE user_id = ?
		ORDER BY created_at
	`)

	repayments := []*domain.Repayment{}
	if err := sqlx.SelectContext(ctx, r.db, &repayments, query, userID); err != nil {
		return nil, err
	}
	if len(repayments) == 0 {
		return repayments, nil
	}

	ids := make([]uuid.UUID, 0, len(repayments))
	byID := make(map[uuid.UUID]*domain.Repayment, len(repayments))
	for _, repayment := range repayments {
		ids = append(ids, repayment.ID)
		byID[repayment.ID] = repayment
	}

	linkQuery, args, err := sqlx.In(`
		SELECT rb.repayment_id, rb.bill_id
		FROM repayment_bills rb
		JOIN bills b ON b.id = rb.bill_id
		WHERE rb.repayment_id IN (?)
		ORDER BY b.seq_num
	`, ids)
	if err != nil {
		return nil, err
	}

	var links []struct {
		RepaymentID uuid.UUID `db:"repayment_id"`
		BillID      uuid.UUID `db:"bill_id"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &links, r.db.Rebind(linkQuery), args...); err != nil {
		return nil, err
	}
	for _, link := range links {
		if repayment, ok := byID[link.RepaymentID]; ok {
			repayment.BillIDs = append(repayment.BillIDs, link.BillID)
		}
	}

	return repayments, nil
}
