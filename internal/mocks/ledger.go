package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-ledger/internal/domain"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) OriginateLoan(ctx context.Context, userID string, principal decimal.Decimal, interval domain.Interval, tenure int, interestPctPerAnnum decimal.Decimal) (*domain.Loan, []*domain.Bill, error) {
	args := m.Called(ctx, userID, principal, interval, tenure, interestPctPerAnnum)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Loan), args.Get(1).([]*domain.Bill), args.Error(2)
}

func (m *MockLedgerService) GetLoanStatus(ctx context.Context, userID string, ref time.Time) (*domain.LoanStatus, bool, error) {
	args := m.Called(ctx, userID, ref)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.LoanStatus), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) MakePayment(ctx context.Context, userID string, amount decimal.Decimal, ref time.Time) ([]*domain.Repayment, error) {
	args := m.Called(ctx, userID, amount, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repayment), args.Error(1)
}

func (m *MockLedgerService) GetBills(ctx context.Context, userID string) ([]*domain.Bill, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bill), args.Error(1)
}

func (m *MockLedgerService) GetRepayments(ctx context.Context, userID string) ([]*domain.Repayment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repayment), args.Error(1)
}
