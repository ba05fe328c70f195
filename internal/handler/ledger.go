package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/domain"
	customError "github.com/segyhp/loan-ledger/pkg/errors"
	"github.com/segyhp/loan-ledger/pkg/response"
	"github.com/segyhp/loan-ledger/pkg/utils"
)

const (
	userIDHeader  = "user-id"
	currentDateQS = "current-date"
)

// Ledger is the part of the loan ledger the HTTP layer needs.
type Ledger interface {
	OriginateLoan(ctx context.Context, userID string, principal decimal.Decimal, interval domain.Interval, tenure int, interestPctPerAnnum decimal.Decimal) (*domain.Loan, []*domain.Bill, error)
	GetLoanStatus(ctx context.Context, userID string, ref time.Time) (*domain.LoanStatus, bool, error)
	MakePayment(ctx context.Context, userID string, amount decimal.Decimal, ref time.Time) ([]*domain.Repayment, error)
	GetBills(ctx context.Context, userID string) ([]*domain.Bill, error)
	GetRepayments(ctx context.Context, userID string) ([]*domain.Repayment, error)
}

type LedgerHandler struct {
	service   Ledger
	validator *validator.Validate
	cfg       *config.Config

	// now supplies the reference date when current-date is omitted
	now func() time.Time
}

func NewLedgerHandler(service Ledger, cfg *config.Config) *LedgerHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &LedgerHandler{
		service:   service,
		validator: NewValidator(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// NewValidator returns a validator that compares decimal.Decimal fields numerically.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (h *LedgerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/loan", h.CreateLoan).Methods(http.MethodPost)
	r.HandleFunc("/loan", h.GetLoanStatus).Methods(http.MethodGet)
	r.HandleFunc("/loan/make-payment", h.MakePayment).Methods(http.MethodPost)
	r.HandleFunc("/loan/bills", h.GetBills).Methods(http.MethodGet)
	r.HandleFunc("/loan/repayments", h.GetRepayments).Methods(http.MethodGet)
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		response.BadRequest(w, "user-id header is required", nil)
		return "", false
	}
	return id, true
}

func (h *LedgerHandler) referenceDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get(currentDateQS)
	ref, err := utils.ParseReferenceDate(raw, h.now())
	if err != nil {
		response.BusinessError(w, customError.WrapInvalidDateFormat(raw))
		return time.Time{}, false
	}
	return ref, true
}

// decode reads a JSON body into dst; an empty body leaves dst untouched.
func decode(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// applyDefaults fills omitted loan terms from configuration.
func (h *LedgerHandler) applyDefaults(req *domain.CreateLoanRequest) {
	if req.Principal == nil {
		principal := h.cfg.GetDefaultPrincipal()
		req.Principal = &principal
	}
	if req.Interval == "" {
		req.Interval = string(h.cfg.GetDefaultInterval())
	}
	if req.Tenure == nil {
		tenure := h.cfg.Business.DefaultTenure
		req.Tenure = &tenure
	}
	if req.InterestPctPerAnnum == nil {
		pct := h.cfg.GetDefaultInterestPct()
		req.InterestPctPerAnnum = &pct
	}
}

// CreateLoan handles POST /loan
func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req domain.CreateLoanRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	h.applyDefaults(&req)

	if err := h.validator.Struct(req); err != nil {
		response.BusinessError(w, customError.WrapInvalidLoanTerms(err.Error()))
		return
	}
	interval, err := domain.ParseInterval(req.Interval)
	if err != nil {
		response.BusinessError(w, customError.WrapInvalidLoanTerms(err.Error()))
		return
	}

	loan, bills, err := h.service.OriginateLoan(r.Context(), uid, *req.Principal, interval, *req.Tenure, *req.InterestPctPerAnnum)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan, Bills: bills})
}

// GetLoanStatus handles GET /loan?current-date=
func (h *LedgerHandler) GetLoanStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	status, found, err := h.service.GetLoanStatus(r.Context(), uid, ref)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	if !found {
		response.BusinessError(w, customError.WrapLoanNotFound(uid))
		return
	}

	response.Success(w, status)
}

// MakePayment handles POST /loan/make-payment?current-date=
func (h *LedgerHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	var req domain.MakePaymentRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "amount must be positive", err)
		return
	}

	repayments, err := h.service.MakePayment(r.Context(), uid, req.Amount, ref)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, repayments)
}

// GetBills handles GET /loan/bills
func (h *LedgerHandler) GetBills(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	bills, err := h.service.GetBills(r.Context(), uid)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, bills)
}

// GetRepayments handles GET /loan/repayments
func (h *LedgerHandler) GetRepayments(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	repayments, err := h.service.GetRepayments(r.Context(), uid)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, repayments)
}
