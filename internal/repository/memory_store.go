package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

// MemoryStore is an in-process Store. A unit of work holds the store lock
// from Begin to End and works on a copy that Commit swaps in.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	loans      map[uuid.UUID]*domain.Loan
	loanByUser map[string]uuid.UUID
	bills      map[uuid.UUID][]*domain.Bill // by loan, ordered by seq
	repayments []*domain.Repayment
	billOwner  map[uuid.UUID]uuid.UUID // bill -> repayment
}

func newMemState() *memState {
	return &memState{
		loans:      make(map[uuid.UUID]*domain.Loan),
		loanByUser: make(map[string]uuid.UUID),
		bills:      make(map[uuid.UUID][]*domain.Bill),
		billOwner:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for id, loan := range s.loans {
		l := *loan
		c.loans[id] = &l
	}
	for user, id := range s.loanByUser {
		c.loanByUser[user] = id
	}
	for id, bills := range s.bills {
		c.bills[id] = cloneBills(bills)
	}
	for _, repayment := range s.repayments {
		c.repayments = append(c.repayments, cloneRepayment(repayment))
	}
	for bill, repayment := range s.billOwner {
		c.billOwner[bill] = repayment
	}
	return c
}

func cloneBills(bills []*domain.Bill) []*domain.Bill {
	out := make([]*domain.Bill, 0, len(bills))
	for _, bill := range bills {
		b := *bill
		out = append(out, &b)
	}
	return out
}

func cloneRepayment(r *domain.Repayment) *domain.Repayment {
	c := *r
	c.BillIDs = slices.Clone(r.BillIDs)
	return &c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

// view runs fn against the committed state under the store lock.
func (s *MemoryStore) view(fn func(*memState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *MemoryStore) Loans() LoanRepository           { return memLoans{s.view} }
func (s *MemoryStore) Bills() BillRepository           { return memBills{s.view} }
func (s *MemoryStore) Repayments() RepaymentRepository { return memRepayments{s.view} }

func (s *MemoryStore) Begin(ctx context.Context) (UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memUnitOfWork{store: s, staged: s.state.clone()}, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

type memUnitOfWork struct {
	store    *MemoryStore
	staged   *memState
	finished bool
	ended    bool
}

func (u *memUnitOfWork) run(fn func(*memState) error) error {
	if u.finished {
		return errors.New("unit of work already finished")
	}
	return fn(u.staged)
}

func (u *memUnitOfWork) Loans() LoanRepository           { return memLoans{u.run} }
func (u *memUnitOfWork) Bills() BillRepository           { return memBills{u.run} }
func (u *memUnitOfWork) Repayments() RepaymentRepository { return memRepayments{u.run} }

func (u *memUnitOfWork) Commit() error {
	if u.finished {
		return errors.New("unit of work already finished")
	}
	u.finished = true
	u.store.state = u.staged
	return nil
}

func (u *memUnitOfWork) Abort() error {
	u.finished = true
	u.staged = nil
	return nil
}

func (u *memUnitOfWork) End() {
	if u.ended {
		return
	}
	u.ended = true
	if !u.finished {
		_ = u.Abort()
	}
	u.store.mu.Unlock()
}

type memLoans struct {
	with func(func(*memState) error) error
}

func (r memLoans) Create(_ context.Context, loan *domain.Loan) error {
	return r.with(func(s *memState) error {
		if _, ok := s.loanByUser[loan.UserID]; ok {
			return fmt.Errorf("%w: user %s", customError.ErrLoanAlreadyExists, loan.UserID)
		}
		l := *loan
		s.loans[loan.ID] = &l
		s.loanByUser[loan.UserID] = loan.ID
		return nil
	})
}

func (r memLoans) GetByUserID(_ context.Context, userID string) (*domain.Loan, error) {
	var out *domain.Loan
	err := r.with(func(s *memState) error {
		id, ok := s.loanByUser[userID]
		if !ok {
			return customError.ErrLoanNotFound
		}
		l := *s.loans[id]
		out = &l
		return nil
	})
	return out, err
}

func (r memLoans) MarkSettled(_ context.Context, loanID uuid.UUID) error {
	return r.with(func(s *memState) error {
		loan, ok := s.loans[loanID]
		if !ok || loan.IsSettled {
			return fmt.Errorf("loan %s is missing or already settled", loanID)
		}
		loan.IsSettled = true
		loan.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r memLoans) ListUnsettled(context.Context) ([]*domain.Loan, error) {
	var out []*domain.Loan
	err := r.with(func(s *memState) error {
		for _, loan := range s.loans {
			if !loan.IsSettled {
				l := *loan
				out = append(out, &l)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.Loan) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}

type memBills struct {
	with func(func(*memState) error) error
}

func (f BillFilter) matches(b *domain.Bill) bool {
	if f.FromSeqNum > 0 && b.SeqNum < f.FromSeqNum {
		return false
	}
	if f.ToSeqNum > 0 && b.SeqNum > f.ToSeqNum {
		return false
	}
	return !f.OnlyUnpaid || !b.IsPaid
}

func (r memBills) CreateBatch(_ context.Context, bills []*domain.Bill) error {
	if len(bills) == 0 {
		return errors.New("empty bill batch")
	}
	return r.with(func(s *memState) error {
		staged := make(map[uuid.UUID][]*domain.Bill)
		for _, bill := range bills {
			if _, ok := s.loans[bill.LoanID]; !ok {
				return fmt.Errorf("bill %d references unknown loan %s", bill.SeqNum, bill.LoanID)
			}
			existing := slices.Concat(s.bills[bill.LoanID], staged[bill.LoanID])
			if slices.ContainsFunc(existing, func(b *domain.Bill) bool { return b.SeqNum == bill.SeqNum }) {
				return fmt.Errorf("duplicate bill seq %d for loan %s", bill.SeqNum, bill.LoanID)
			}
			b := *bill
			staged[bill.LoanID] = append(staged[bill.LoanID], &b)
		}
		for loanID, added := range staged {
			all := slices.Concat(s.bills[loanID], added)
			slices.SortFunc(all, func(a, b *domain.Bill) int { return a.SeqNum - b.SeqNum })
			s.bills[loanID] = all
		}
		return nil
	})
}

func (r memBills) Find(_ context.Context, filter BillFilter) ([]*domain.Bill, error) {
	var out []*domain.Bill
	err := r.with(func(s *memState) error {
		for _, bill := range s.bills[filter.LoanID] {
			if filter.matches(bill) {
				b := *bill
				out = append(out, &b)
			}
		}
		return nil
	})
	return out, err
}

func (r memBills) MarkPaid(_ context.Context, filter BillFilter) (int64, error) {
	filter.OnlyUnpaid = true
	var n int64
	err := r.with(func(s *memState) error {
		for _, bill := range s.bills[filter.LoanID] {
			if filter.matches(bill) {
				bill.IsPaid = true
				n++
			}
		}
		return nil
	})
	return n, err
}

type memRepayments struct {
	with func(func(*memState) error) error
}

func (r memRepayments) Create(_ context.Context, repayment *domain.Repayment) error {
	return r.with(func(s *memState) error {
		for _, billID := range repayment.BillIDs {
			if _, taken := s.billOwner[billID]; taken {
				return fmt.Errorf("%w: bill %s", customError.ErrBillAlreadyReferenced, billID)
			}
		}
		for _, billID := range repayment.BillIDs {
			s.billOwner[billID] = repayment.ID
		}
		s.repayments = append(s.repayments, cloneRepayment(repayment))
		return nil
	})
}

func (r memRepayments) ListByUserID(_ context.Context, userID string) ([]*domain.Repayment, error) {
	out := []*domain.Repayment{}
	err := r.with(func(s *memState) error {
		for _, repayment := range s.repayments {
			if repayment.UserID == userID {
				out = append(out, cloneRepayment(repayment))
			}
		}
		return nil
	})
	return out, err
}
