package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByUserID(ctx context.Context, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkSettled(ctx context.Context, loanID uuid.UUID) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockLoanRepository) ListUnsettled(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) CreateBatch(ctx context.Context, bills []*domain.Bill) error {
	args := m.Called(ctx, bills)
	return args.Error(0)
}

func (m *MockBillRepository) Find(ctx context.Context, filter repository.BillFilter) ([]*domain.Bill, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) MarkPaid(ctx context.Context, filter repository.BillFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Repayment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repayment), args.Error(1)
}

// MockRepositories hands out the same repository mocks from every accessor.
type MockRepositories struct {
	LoanRepo      *MockLoanRepository
	BillRepo      *MockBillRepository
	RepaymentRepo *MockRepaymentRepository
}

func NewMockRepositories() MockRepositories {
	return MockRepositories{
		LoanRepo:      &MockLoanRepository{},
		BillRepo:      &MockBillRepository{},
		RepaymentRepo: &MockRepaymentRepository{},
	}
}

func (r MockRepositories) Loans() repository.LoanRepository           { return r.LoanRepo }
func (r MockRepositories) Bills() repository.BillRepository           { return r.BillRepo }
func (r MockRepositories) Repayments() repository.RepaymentRepository { return r.RepaymentRepo }

func (r MockRepositories) AssertExpectations(t mock.TestingT) {
	r.LoanRepo.AssertExpectations(t)
	r.BillRepo.AssertExpectations(t)
	r.RepaymentRepo.AssertExpectations(t)
}

type MockUnitOfWork struct {
	MockRepositories
	mock.Mock
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{MockRepositories: NewMockRepositories()}
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Abort() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) End() {
	m.Called()
}

func (m *MockUnitOfWork) AssertExpectations(t mock.TestingT) bool {
	m.MockRepositories.AssertExpectations(t)
	return m.Mock.AssertExpectations(t)
}

type MockStore struct {
	MockRepositories
	mock.Mock
}

func NewMockStore() *MockStore {
	return &MockStore{MockRepositories: NewMockRepositories()}
}

func (m *MockStore) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.UnitOfWork), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) AssertExpectations(t mock.TestingT) bool {
	m.MockRepositories.AssertExpectations(t)
	return m.Mock.AssertExpectations(t)
}
