package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-ledger/internal/domain"
)

type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Get(ctx context.Context, userID string, ref time.Time) (*domain.LoanStatus, bool, error) {
	args := m.Called(ctx, userID, ref)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.LoanStatus), args.Bool(1), args.Error(2)
}

func (m *MockStatusCache) Generation(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatusCache) Set(ctx context.Context, userID string, ref time.Time, gen int64, status *domain.LoanStatus) error {
	args := m.Called(ctx, userID, ref, gen, status)
	return args.Error(0)
}

func (m *MockStatusCache) Invalidate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
