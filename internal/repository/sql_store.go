package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS loans (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	principal_amount NUMERIC NOT NULL,
	amount NUMERIC NOT NULL,
	tenure INTEGER NOT NULL CHECK (tenure > 0),
	interest_pct_per_annum NUMERIC NOT NULL,
	installment_amount NUMERIC(20,2) NOT NULL,
	billing_interval TEXT NOT NULL,
	is_settled BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS bills (
	id UUID PRIMARY KEY,
	loan_id UUID NOT NULL REFERENCES loans(id),
	user_id TEXT NOT NULL,
	seq_num INTEGER NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	amount_due NUMERIC(20,2) NOT NULL,
	is_paid BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (loan_id, seq_num)
);
CREATE TABLE IF NOT EXISTS repayments (
	id UUID PRIMARY KEY,
	loan_id UUID NOT NULL REFERENCES loans(id),
	user_id TEXT NOT NULL,
	amount NUMERIC(20,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS repayment_bills (
	bill_id UUID PRIMARY KEY REFERENCES bills(id),
	repayment_id UUID NOT NULL REFERENCES repayments(id)
);
CREATE INDEX IF NOT EXISTS idx_repayments_user_id ON repayments(user_id);
`

// TEXT for decimals so sqlite keeps full precision.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS loans (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	principal_amount TEXT NOT NULL,
	amount TEXT NOT NULL,
	tenure INTEGER NOT NULL CHECK (tenure > 0),
	interest_pct_per_annum TEXT NOT NULL,
	installment_amount TEXT NOT NULL,
	billing_interval TEXT NOT NULL,
	is_settled BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS bills (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(id),
	user_id TEXT NOT NULL,
	seq_num INTEGER NOT NULL,
	due_date TIMESTAMP NOT NULL,
	amount_due TEXT NOT NULL,
	is_paid BOOLEAN NOT NULL DEFAULT 0,
	UNIQUE (loan_id, seq_num)
);
CREATE TABLE IF NOT EXISTS repayments (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(id),
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS repayment_bills (
	bill_id TEXT PRIMARY KEY REFERENCES bills(id),
	repayment_id TEXT NOT NULL REFERENCES repayments(id)
);
CREATE INDEX IF NOT EXISTS idx_repayments_user_id ON repayments(user_id);
`

// SQLStore implements Store on top of sqlx for postgres and sqlite.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore connects, applies connection settings per driver and migrates the schema.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if driver == DriverSQLite {
		// one writer; also keeps in-memory databases on a single connection
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	log.Printf("Database connection established driver=%s", driver)
	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.db.DriverName() == DriverSQLite {
		schema = sqliteSchema
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLStore) Loans() LoanRepository {
	return NewLoanRepository(s.db)
}

func (s *SQLStore) Bills() BillRepository {
	return NewBillRepository(s.db)
}

func (s *SQLStore) Repayments() RepaymentRepository {
	return NewRepaymentRepository(s.db)
}

func (s *SQLStore) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlUnitOfWork{tx: tx}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sqlx.DB {
	return s.db
}

type sqlUnitOfWork struct {
	tx       *sqlx.Tx
	finished bool
	ended    bool
}

func (u *sqlUnitOfWork) Loans() LoanRepository {
	return NewLoanRepository(u.tx)
}

func (u *sqlUnitOfWork) Bills() BillRepository {
	return NewBillRepository(u.tx)
}

func (u *sqlUnitOfWork) Repayments() RepaymentRepository {
	return NewRepaymentRepository(u.tx)
}

func (u *sqlUnitOfWork) Commit() error {
	if u.finished {
		return errors.New("unit of work already finished")
	}
	u.finished = true
	return u.tx.Commit()
}

func (u *sqlUnitOfWork) Abort() error {
	if u.finished {
		return nil
	}
	u.finished = true
	return u.tx.Rollback()
}

func (u *sqlUnitOfWork) End() {
	if u.ended {
		return
	}
	u.ended = true
	if !u.finished {
		if err := u.Abort(); err != nil {
			log.Printf("unit of work rollback on end failed: %v", err)
		}
	}
}

// isUniqueViolation reports whether err comes from a unique or primary key constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
