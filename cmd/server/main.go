package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/segyhp/loan-ledger/internal/app"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/handler"
	"github.com/segyhp/loan-ledger/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsDevelopment() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := app.Open(startCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	ledgerHandler := handler.NewLedgerHandler(deps.Ledger, cfg)
	healthHandler := handler.NewHealthHandler(deps.Store, deps.Redis, cfg.GetHealthTimeout())

	router := setupRoutes(ledgerHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting addr=%s env=%s driver=%s", server.Addr, cfg.Server.Env, cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupRoutes(ledgerHandler *handler.LedgerHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	healthHandler.RegisterRoutes(router)
	ledgerHandler.RegisterRoutes(router)

	return router
}
