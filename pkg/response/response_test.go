package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	tests := map[string]int{
		customError.ErrCodeLoanNotFound:             http.StatusNotFound,
		customError.ErrCodeLoanAlreadyExists:        http.StatusConflict,
		customError.ErrCodeLoanSettled:              http.StatusBadRequest,
		customError.ErrCodeBillAlreadyPaid:          http.StatusBadRequest,
		customError.ErrCodeInvalidPaymentAmount:     http.StatusBadRequest,
		customError.ErrCodeInvalidLoanTerms:         http.StatusBadRequest,
		customError.ErrCodeInvalidDateFormat:        http.StatusBadRequest,
		customError.ErrCodeScheduleGenerationFailed: http.StatusInternalServerError,
		customError.ErrCodeDatabaseError:            http.StatusInternalServerError,
		"":                                          http.StatusInternalServerError,
	}

	for code, status := range tests {
		assert.Equal(t, status, StatusOf(code), code)
	}
}

func TestBusinessError(t *testing.T) {
	t.Run("carries code and expected amount", func(t *testing.T) {
		w := httptest.NewRecorder()
		BusinessError(w, customError.WrapInvalidPaymentAmount(decimal.NewFromInt(220000)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, customError.ErrCodeInvalidPaymentAmount, body.Code)
		require.NotNil(t, body.ExpectedAmount)
		assert.True(t, body.ExpectedAmount.Equal(decimal.NewFromInt(220000)))
	})

	t.Run("wrapped storage error hides cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		BusinessError(w, customError.WrapDatabaseError(errors.New("dial tcp 10.0.0.5:5432")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})

	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		BusinessError(w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

func TestLoggingMiddleware_KeepsStatus(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/loan", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}
