package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-ledger/internal/repository"
	"github.com/segyhp/loan-ledger/pkg/response"
)

type HealthHandler struct {
	store   repository.Store
	redis   *redis.Client
	timeout time.Duration
}

// NewHealthHandler builds the health endpoints; redis may be nil when no cache is configured.
func NewHealthHandler(store repository.Store, redis *redis.Client, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{
		store:   store,
		redis:   redis,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    map[string]string{},
	})
}

// Ready checks store and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		status.Status = "error"
		status.Checks["database"] = "failed: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Status = "error"
			status.Checks["redis"] = "failed: " + err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}
