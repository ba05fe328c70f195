package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/loan-ledger/internal/app"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/repository"
	"github.com/segyhp/loan-ledger/internal/service"
)

func main() {
	log.Println("Starting delinquency scheduler...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := checkDriver(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := app.Open(startCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.Scheduler.Cron, func() { sweep(ctx, deps.Ledger) }); err != nil {
		log.Fatalf("Error scheduling delinquency sweep: %v", err)
	}

	c.Start()
	log.Printf("Scheduler started cron=%q tz=%s", cfg.Scheduler.Cron, loc)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	stop()
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

// checkDriver rejects stores the sweep cannot share with the server process.
func checkDriver(cfg *config.Config) error {
	if cfg.Database.Driver == config.DriverMemory {
		return fmt.Errorf("DATABASE_DRIVER=%s keeps loans inside one process; the scheduler needs %s or %s",
			config.DriverMemory, repository.DriverPostgres, repository.DriverSQLite)
	}
	return nil
}

func sweep(ctx context.Context, ledger *service.LedgerService) {
	start := time.Now()
	reports, err := ledger.DelinquencySweep(ctx, start.UTC())
	if err != nil {
		log.Printf("delinquency sweep failed: %v", err)
		return
	}

	for _, r := range reports {
		log.Printf("delinquent loan user=%s loan=%s late=%d", r.UserID, r.LoanID, r.LatePaymentCount)
	}
	log.Printf("delinquency sweep done delinquent=%d duration=%s", len(reports), time.Since(start))
}
