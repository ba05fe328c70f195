package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrLoanNotFound             = errors.New("loan not found")
	ErrLoanAlreadyExists        = errors.New("loan already exists")
	ErrLoanSettled              = errors.New("loan is already settled")
	ErrBillAlreadyPaid          = errors.New("bill is already paid")
	ErrInvalidPaymentAmount     = errors.New("invalid payment amount")
	ErrInvalidLoanTerms         = errors.New("invalid loan terms")
	ErrInvalidDateFormat        = errors.New("invalid date format")
	ErrScheduleGenerationFailed = errors.New("schedule generation failed")
	ErrBillsOutOfOrder          = errors.New("bills are not ordered by sequence number")
	ErrConcurrentPayment        = errors.New("bills were modified concurrently")
	ErrBillAlreadyReferenced    = errors.New("bill already referenced by a repayment")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
	// Expected carries the payable amount for INVALID_PAYMENT_AMOUNT.
	Expected *decimal.Decimal
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound             = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists        = "LOAN_ALREADY_EXISTS"
	ErrCodeLoanSettled              = "LOAN_IS_SETTLED"
	ErrCodeBillAlreadyPaid          = "BILL_ALREADY_PAID"
	ErrCodeInvalidPaymentAmount     = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidLoanTerms         = "INVALID_LOAN_TERMS"
	ErrCodeInvalidDateFormat        = "INVALID_DATE_FORMAT"
	ErrCodeScheduleGenerationFailed = "SCHEDULE_GENERATION_FAILED"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeCacheError               = "CACHE_ERROR"
)

// CodeOf returns the business code carried by err, or "" if there is none.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapLoanNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan for user %s not found", userID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan for user %s already exists", userID),
		ErrLoanAlreadyExists,
	)
}

func WrapLoanSettled() *BusinessError {
	return NewBusinessError(
		ErrCodeLoanSettled,
		"Loan is already settled",
		ErrLoanSettled,
	)
}

func WrapBillAlreadyPaid() *BusinessError {
	return NewBusinessError(
		ErrCodeBillAlreadyPaid,
		"Bill is already paid",
		ErrBillAlreadyPaid,
	)
}

func WrapInvalidPaymentAmount(expected decimal.Decimal) *BusinessError {
	be := NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("The amount must paid must be %s", expected.String()),
		ErrInvalidPaymentAmount,
	)
	be.Expected = &expected
	return be
}

func WrapInvalidLoanTerms(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanTerms,
		reason,
		ErrInvalidLoanTerms,
	)
}

func WrapInvalidDateFormat(value string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDateFormat,
		fmt.Sprintf("Date format is invalid: %q", value),
		ErrInvalidDateFormat,
	)
}

func WrapScheduleGenerationFailed(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeScheduleGenerationFailed,
		"bill schedule could not be generated",
		errors.Join(ErrScheduleGenerationFailed, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
