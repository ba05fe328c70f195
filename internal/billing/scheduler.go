// Package billing holds the loan amortization and repayment allocation rules.
// Everything here is pure: callers load bills, pass them in and persist the result.
package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/pkg/utils"
)

// Week is the fixed billing step and due window length.
const Week = 7 * 24 * time.Hour

// Stepper yields the due date following prev.
type Stepper interface {
	Next(prev time.Time) time.Time
}

// FixedStep advances by a constant duration.
type FixedStep time.Duration

func (s FixedStep) Next(prev time.Time) time.Time {
	return utils.CalculateDueDate(prev, 1, time.Duration(s))
}

// CalendarMonth advances by one calendar month.
type CalendarMonth struct{}

func (CalendarMonth) Next(prev time.Time) time.Time {
	return prev.AddDate(0, 1, 0)
}

// ScheduleTerms is the subset of a loan needed to lay out its bills.
type ScheduleTerms struct {
	LoanID            uuid.UUID
	UserID            string
	CreatedAt         time.Time
	Tenure            int
	InstallmentAmount decimal.Decimal
	Interval          domain.Interval
}

// TermsOf extracts schedule terms from a stored loan.
func TermsOf(loan *domain.Loan) ScheduleTerms {
	return ScheduleTerms{
		LoanID:            loan.ID,
		UserID:            loan.UserID,
		CreatedAt:         loan.CreatedAt,
		Tenure:            loan.Tenure,
		InstallmentAmount: loan.InstallmentAmount,
		Interval:          loan.Interval,
	}
}

// Scheduler turns loan terms into an ordered bill schedule.
type Scheduler struct {
	steps map[domain.Interval]Stepper
}

// NewScheduler builds a scheduler with one stepper per interval.
func NewScheduler(steps map[domain.Interval]Stepper) *Scheduler {
	return &Scheduler{steps: steps}
}

// DefaultScheduler steps every interval by seven days.
func DefaultScheduler() *Scheduler {
	return NewScheduler(map[domain.Interval]Stepper{
		domain.IntervalWeekly:  FixedStep(Week),
		domain.IntervalMonthly: FixedStep(Week),
	})
}

// GenerateSchedule produces exactly Tenure bills with seqNum 1..Tenure.
// The first bill falls one step after CreatedAt.
func (s *Scheduler) GenerateSchedule(terms ScheduleTerms) ([]*domain.Bill, error) {
	if terms.Tenure < 1 {
		return nil, fmt.Errorf("tenure must be positive, got %d", terms.Tenure)
	}
	step, ok := s.steps[terms.Interval]
	if !ok {
		return nil, fmt.Errorf("no stepper for interval %q", terms.Interval)
	}

	bills := make([]*domain.Bill, 0, terms.Tenure)
	dueDate := terms.CreatedAt
	for seq := 1; seq <= terms.Tenure; seq++ {
		next := step.Next(dueDate)
		if !next.After(dueDate) {
			return nil, fmt.Errorf("stepper for %q did not advance past %s", terms.Interval, dueDate)
		}
		dueDate = next

		bills = append(bills, &domain.Bill{
			ID:        uuid.New(),
			LoanID:    terms.LoanID,
			UserID:    terms.UserID,
			SeqNum:    seq,
			DueDate:   dueDate,
			AmountDue: terms.InstallmentAmount,
			IsPaid:    false,
		})
	}
	return bills, nil
}

// NewLoan computes the derived amounts of a loan from its terms.
func NewLoan(userID string, principal decimal.Decimal, interval domain.Interval, tenure int, interestPctPerAnnum decimal.Decimal, now time.Time) (*domain.Loan, error) {
	switch {
	case !principal.IsPositive():
		return nil, fmt.Errorf("principal must be positive")
	case tenure < 1:
		return nil, fmt.Errorf("tenure must be positive")
	case interestPctPerAnnum.IsNegative():
		return nil, fmt.Errorf("interest rate must not be negative")
	}

	amount := utils.CalculateLoanAmount(principal, interestPctPerAnnum)
	return &domain.Loan{
		ID:                  uuid.New(),
		UserID:              userID,
		PrincipalAmount:     principal,
		Amount:              amount,
		Tenure:              tenure,
		InterestPctPerAnnum: interestPctPerAnnum,
		InstallmentAmount:   utils.CalculateInstallment(amount, tenure),
		Interval:            interval,
		IsSettled:           false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}
