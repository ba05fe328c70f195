package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapInvalidPaymentAmount(t *testing.T) {
	err := WrapInvalidPaymentAmount(decimal.NewFromInt(220000))

	assert.Equal(t, ErrCodeInvalidPaymentAmount, err.Code)
	assert.Contains(t, err.Message, "220000")
	require.NotNil(t, err.Expected)
	assert.True(t, err.Expected.Equal(decimal.NewFromInt(220000)))
	assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("make payment: %w", WrapLoanSettled())

	assert.Equal(t, ErrCodeLoanSettled, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestWrapScheduleGenerationFailed(t *testing.T) {
	cause := errors.New("insert failed")
	err := WrapScheduleGenerationFailed(cause)

	assert.ErrorIs(t, err, ErrScheduleGenerationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), ErrCodeScheduleGenerationFailed)
}
