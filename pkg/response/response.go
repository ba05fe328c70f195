package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// ExpectedAmount is set when a payment did not match the payable amount
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func writeError(w http.ResponseWriter, statusCode int, body ErrorResponse) {
	body.Success = false
	body.Timestamp = time.Now()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode error response: %v", err)
	}
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	body := ErrorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeError(w, statusCode, body)
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusInternalServerError, message, err)
}

// StatusOf maps a business error code to an HTTP status.
func StatusOf(code string) int {
	switch code {
	case customError.ErrCodeLoanNotFound:
		return http.StatusNotFound
	case customError.ErrCodeLoanAlreadyExists:
		return http.StatusConflict
	case customError.ErrCodeLoanSettled,
		customError.ErrCodeBillAlreadyPaid,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeInvalidLoanTerms,
		customError.ErrCodeInvalidDateFormat:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// BusinessError writes err with the status matching its code.
// Errors without a code, and storage failures, are reported without internals.
func BusinessError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		log.Printf("unhandled error: %v", err)
		InternalServerError(w, "internal error", nil)
		return
	}

	status := StatusOf(be.Code)
	body := ErrorResponse{
		Code:           be.Code,
		Error:          be.Message,
		ExpectedAmount: be.Expected,
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed code=%s: %v", be.Code, err)
	}
	writeError(w, status, body)
}

// JSONMiddleware sets JSON content type for all responses
func JSONMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, user-id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		log.Printf("method=%s path=%s status=%d duration=%s", r.Method, r.URL.Path, recorder.statusCode, time.Since(start))
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
