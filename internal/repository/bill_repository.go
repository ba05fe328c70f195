package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-ledger/internal/domain"
)

type billRepository struct {
	db sqlx.ExtContext
}

func NewBillRepository(db sqlx.ExtContext) BillRepository {
	return &billRepository{db: db}
}

// where renders the filter as a WHERE clause with its arguments.
func (f BillFilter) where() (string, []interface{}) {
	clauses := []string{"loan_id = ?"}
	args := []interface{}{f.LoanID}
	if f.FromSeqNum > 0 {
		clauses = append(clauses, "seq_num >= ?")
		args = append(args, f.FromSeqNum)
	}
	if f.ToSeqNum > 0 {
		clauses = append(clauses, "seq_num <= ?")
		args = append(args, f.ToSeqNum)
	}
	if f.OnlyUnpaid {
		clauses = append(clauses, "is_paid = ?")
		args = append(args, false)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// CreateBatch relies on the caller's transaction when db is a *sqlx.Tx;
// on a plain connection it opens its own.
func (r *billRepository) CreateBatch(ctx context.Context, bills []*domain.Bill) error {
	if len(bills) == 0 {
		return errors.New("empty bill batch")
	}

	if db, ok := r.db.(*sqlx.DB); ok {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := insertBills(ctx, tx, bills); err != nil {
			return err
		}
		return tx.Commit()
	}

	return insertBills(ctx, r.db, bills)
}

func insertBills(ctx context.Context, db sqlx.ExtContext, bills []*domain.Bill) error {
	query := db.Rebind(`
		INSERT INTO bills (id, loan_id, user_id, seq_num, due_date, amount_due, is_paid)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	for _, bill := range bills {
		_, err := db.ExecContext(ctx, query,
			bill.ID,
			bill.LoanID,
			bill.UserID,
			bill.SeqNum,
			bill.DueDate,
			bill.AmountDue,
			bill.IsPaid,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *billRepository) Find(ctx context.Context, filter BillFilter) ([]*domain.Bill, error) {
	where, args := filter.where()
	query := r.db.Rebind(`
		SELECT id, loan_id, user_id, seq_num, due_date, amount_due, is_paid
		FROM bills` + where + `
		ORDER BY seq_num
	`)

	var bills []*domain.Bill
	if err := sqlx.SelectContext(ctx, r.db, &bills, query, args...); err != nil {
		return nil, err
	}

	return bills, nil
}

func (r *billRepository) MarkPaid(ctx context.Context, filter BillFilter) (int64, error) {
	filter.OnlyUnpaid = true
	where, args := filter.where()
	query := r.db.Rebind(`UPDATE bills SET is_paid = ?` + where)

	result, err := r.db.ExecContext(ctx, query, append([]interface{}{true}, args...)...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
