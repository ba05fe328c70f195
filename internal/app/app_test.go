package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/internal/repository"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name      string
		configure func(t *testing.T, cfg *config.Config)
		storeType interface{}
	}{
		{
			name: "memory",
			configure: func(t *testing.T, cfg *config.Config) {
				cfg.Database.Driver = config.DriverMemory
			},
			storeType: &repository.MemoryStore{},
		},
		{
			name: "sqlite",
			configure: func(t *testing.T, cfg *config.Config) {
				cfg.Database.Driver = repository.DriverSQLite
				cfg.Database.URL = filepath.Join(t.TempDir(), "ledger.db")
			},
			storeType: &repository.SQLStore{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.Default()
			tt.configure(t, cfg)

			deps, err := Open(ctx, cfg)
			require.NoError(t, err)
			defer deps.Close()

			assert.IsType(t, tt.storeType, deps.Store)
			assert.Nil(t, deps.Redis)
			require.NoError(t, deps.Store.Ping(ctx))

			_, bills, err := deps.Ledger.OriginateLoan(ctx, "user-1", decimal.NewFromInt(1000), domain.IntervalWeekly, 4, decimal.Zero)
			require.NoError(t, err)
			assert.Len(t, bills, 4)
		})
	}
}

func TestOpen_UnreachableRedis(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Open(context.Background(), cfg)

	assert.Error(t, err)
}
