package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-ledger/internal/billing"
	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

// LedgerService originates loans, takes payments and reports loan health.
// Writes run inside one unit of work; reads reload everything they need.
type LedgerService struct {
	store     repository.Store
	cache     cache.StatusCache
	scheduler *billing.Scheduler
	tracker   billing.DelinquencyTracker

	// Now is the clock used for loan creation and repayment timestamps
	Now func() time.Time
}

func NewLedgerService(
	store repository.Store,
	statusCache cache.StatusCache,
	cfg *config.Config,
) *LedgerService {
	if cfg == nil {
		cfg = config.Default()
	}
	if statusCache == nil {
		statusCache = cache.Noop{}
	}

	return &LedgerService{
		store:     store,
		cache:     statusCache,
		scheduler: SchedulerFor(cfg),
		tracker:   billing.NewDelinquencyTracker(cfg.Business.DelinquencyThreshold),
		Now:       time.Now,
	}
}

// SchedulerFor picks the bill stepping per interval from configuration.
func SchedulerFor(cfg *config.Config) *billing.Scheduler {
	if !cfg.UseCalendarMonths() {
		return billing.DefaultScheduler()
	}
	return billing.NewScheduler(map[domain.Interval]billing.Stepper{
		domain.IntervalWeekly:  billing.FixedStep(billing.Week),
		domain.IntervalMonthly: billing.CalendarMonth{},
	})
}

// abort rolls back uow and hands back cause so callers can return it directly.
func abort(uow repository.UnitOfWork, op string, cause error) error {
	if err := uow.Abort(); err != nil {
		log.Printf("%s: abort failed: %v (cause: %v)", op, err, cause)
	}
	return cause
}

func (s *LedgerService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Printf("status cache invalidate user=%s: %v", userID, customError.WrapCacheError(err))
	}
}

// OriginateLoan creates a loan and its full bill schedule atomically.
func (s *LedgerService) OriginateLoan(
	ctx context.Context,
	userID string,
	principal decimal.Decimal,
	interval domain.Interval,
	tenure int,
	interestPctPerAnnum decimal.Decimal,
) (*domain.Loan, []*domain.Bill, error) {
	if userID == "" {
		return nil, nil, customError.WrapInvalidLoanTerms("user id is required")
	}
	loan, err := billing.NewLoan(userID, principal, interval, tenure, interestPctPerAnnum, s.Now().UTC())
	if err != nil {
		return nil, nil, customError.WrapInvalidLoanTerms(err.Error())
	}
	bills, err := s.scheduler.GenerateSchedule(billing.TermsOf(loan))
	if err != nil {
		return nil, nil, customError.WrapScheduleGenerationFailed(err)
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	defer uow.End()

	if err := uow.Loans().Create(ctx, loan); err != nil {
		if errors.Is(err, customError.ErrLoanAlreadyExists) {
			return nil, nil, abort(uow, "originate loan", customError.WrapLoanAlreadyExists(userID))
		}
		return nil, nil, abort(uow, "originate loan", customError.WrapDatabaseError(err))
	}

	if err := uow.Bills().CreateBatch(ctx, bills); err != nil {
		return nil, nil, abort(uow, "originate loan", customError.WrapScheduleGenerationFailed(err))
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, abort(uow, "originate loan", customError.WrapDatabaseError(err))
	}

	s.invalidate(ctx, userID)
	log.Printf("loan originated user=%s loan=%s tenure=%d installment=%s", userID, loan.ID, loan.Tenure, loan.InstallmentAmount)

	return loan, bills, nil
}

// GetLoanStatus reports the loan health at ref. The bool is false when the user has no loan.
func (s *LedgerService) GetLoanStatus(ctx context.Context, userID string, ref time.Time) (*domain.LoanStatus, bool, error) {
	if cached, ok, err := s.cache.Get(ctx, userID, ref); err != nil {
		log.Printf("status cache get user=%s: %v", userID, customError.WrapCacheError(err))
	} else if ok {
		return cached, true, nil
	}

	// read before the store so a concurrent invalidation makes Set a no-op
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		log.Printf("status cache generation user=%s: %v", userID, customError.WrapCacheError(genErr))
	}

	loan, err := s.store.Loans().GetByUserID(ctx, userID)
	if errors.Is(err, customError.ErrLoanNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, customError.WrapDatabaseError(err)
	}

	bills, err := s.loadBills(ctx, s.store, loan)
	if err != nil {
		return nil, false, err
	}

	window := billing.ComputeNextDue(bills, ref, loan.InstallmentAmount)
	status := &domain.LoanStatus{
		Loan:               loan,
		OutstandingBalance: billing.OutstandingBalance(bills),
		LatePaymentCount:   s.tracker.CountLate(bills, ref),
		IsDelinquent:       s.tracker.IsDelinquent(bills, ref),
		NextDueDate:        window.DueDateString(),
		PayableAmount:      window.PayableAmount,
		BillCount:          window.BillCount,
		FirstBillSeqNum:    window.FirstBillSeqNum,
	}

	if genErr == nil {
		if err := s.cache.Set(ctx, userID, ref, gen, status); err != nil {
			log.Printf("status cache set user=%s: %v", userID, customError.WrapCacheError(err))
		}
	}

	return status, true, nil
}

func (s *LedgerService) loadBills(ctx context.Context, repos repository.Repositories, loan *domain.Loan) ([]*domain.Bill, error) {
	bills, err := repos.Bills().Find(ctx, repository.BillFilter{LoanID: loan.ID})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := billing.EnsureOrdered(bills); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return bills, nil
}

// MakePayment pays every bill currently due when amount matches the payable amount exactly.
func (s *LedgerService) MakePayment(ctx context.Context, userID string, amount decimal.Decimal, ref time.Time) ([]*domain.Repayment, error) {
	const op = "make payment"

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	defer uow.End()

	loan, err := uow.Loans().GetByUserID(ctx, userID)
	if errors.Is(err, customError.ErrLoanNotFound) {
		return nil, abort(uow, op, customError.WrapLoanNotFound(userID))
	}
	if err != nil {
		return nil, abort(uow, op, customError.WrapDatabaseError(err))
	}
	if err := billing.CheckPayable(loan); err != nil {
		return nil, abort(uow, op, err)
	}

	bills, err := s.loadBills(ctx, uow, loan)
	if err != nil {
		return nil, abort(uow, op, err)
	}

	window := billing.ComputeNextDue(bills, ref, loan.InstallmentAmount)
	alloc, err := billing.Allocate(loan, window, amount)
	if err != nil {
		return nil, abort(uow, op, err)
	}

	filter := repository.BillFilter{LoanID: loan.ID, FromSeqNum: alloc.FromSeqNum, ToSeqNum: alloc.ToSeqNum, OnlyUnpaid: true}
	toPay, err := uow.Bills().Find(ctx, filter)
	if err != nil {
		return nil, abort(uow, op, customError.WrapDatabaseError(err))
	}

	marked, err := uow.Bills().MarkPaid(ctx, filter)
	if err != nil {
		return nil, abort(uow, op, customError.WrapDatabaseError(err))
	}
	if int(marked) != alloc.BillCount || len(toPay) != alloc.BillCount {
		return nil, abort(uow, op, customError.WrapDatabaseError(
			fmt.Errorf("%w: expected %d bills, marked %d", customError.ErrConcurrentPayment, alloc.BillCount, marked)))
	}

	if alloc.SettlesLoan {
		if err := uow.Loans().MarkSettled(ctx, loan.ID); err != nil {
			return nil, abort(uow, op, customError.WrapDatabaseError(err))
		}
	}

	repayment := &domain.Repayment{
		ID:        uuid.New(),
		LoanID:    loan.ID,
		UserID:    loan.UserID,
		Amount:    decimal.Zero,
		BillIDs:   make([]uuid.UUID, 0, len(toPay)),
		CreatedAt: s.Now().UTC(),
	}
	for _, bill := range toPay {
		repayment.Amount = repayment.Amount.Add(bill.AmountDue)
		repayment.BillIDs = append(repayment.BillIDs, bill.ID)
	}
	if !repayment.Amount.Equal(amount) {
		return nil, abort(uow, op, customError.WrapDatabaseError(
			fmt.Errorf("paid bills sum to %s, payment was %s", repayment.Amount, amount)))
	}

	if err := uow.Repayments().Create(ctx, repayment); err != nil {
		return nil, abort(uow, op, customError.WrapDatabaseError(err))
	}

	if err := uow.Commit(); err != nil {
		return nil, abort(uow, op, customError.WrapDatabaseError(err))
	}

	s.invalidate(ctx, userID)
	log.Printf("payment applied user=%s bills=%d-%d amount=%s settled=%t", userID, alloc.FromSeqNum, alloc.ToSeqNum, amount, alloc.SettlesLoan)

	return []*domain.Repayment{repayment}, nil
}

// GetBills returns the full schedule of the user's loan.
func (s *LedgerService) GetBills(ctx context.Context, userID string) ([]*domain.Bill, error) {
	loan, err := s.store.Loans().GetByUserID(ctx, userID)
	if errors.Is(err, customError.ErrLoanNotFound) {
		return nil, customError.WrapLoanNotFound(userID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return s.loadBills(ctx, s.store, loan)
}

// GetRepayments returns the repayment history of a user, oldest first.
func (s *LedgerService) GetRepayments(ctx context.Context, userID string) ([]*domain.Repayment, error) {
	repayments, err := s.store.Repayments().ListByUserID(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return repayments, nil
}

// DelinquencySweep lists every unsettled loan that is delinquent at ref.
func (s *LedgerService) DelinquencySweep(ctx context.Context, ref time.Time) ([]domain.DelinquencyReport, error) {
	loans, err := s.store.Loans().ListUnsettled(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	reports := []domain.DelinquencyReport{}
	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		bills, err := s.loadBills(ctx, s.store, loan)
		if err != nil {
			return reports, err
		}
		if !s.tracker.IsDelinquent(bills, ref) {
			continue
		}
		reports = append(reports, domain.DelinquencyReport{
			UserID:           loan.UserID,
			LoanID:           loan.ID.String(),
			LatePaymentCount: s.tracker.CountLate(bills, ref),
		})
	}

	return reports, nil
}
