package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-ledger/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.Business.DefaultTenure)
	assert.Equal(t, 2, cfg.Business.DelinquencyThreshold)
	assert.True(t, cfg.GetDefaultPrincipal().Equal(decimal.NewFromInt(5000000)))
	assert.True(t, cfg.GetDefaultInterestPct().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, domain.IntervalWeekly, cfg.GetDefaultInterval())
	assert.False(t, cfg.UseCalendarMonths())
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.GetHealthTimeout())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("DEFAULT_TENURE", "12")
	t.Setenv("DEFAULT_INTERVAL", "monthly")
	t.Setenv("MONTHLY_INTERVAL_MODE", "calendar")
	t.Setenv("DELINQUENCY_THRESHOLD", "3")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 12, cfg.Business.DefaultTenure)
	assert.Equal(t, domain.IntervalMonthly, cfg.GetDefaultInterval())
	assert.True(t, cfg.UseCalendarMonths())
	assert.Equal(t, 3, cfg.Business.DelinquencyThreshold)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "DATABASE_DRIVER", value: "mongo"},
		{name: "zero tenure", key: "DEFAULT_TENURE", value: "0"},
		{name: "bad principal", key: "DEFAULT_PRINCIPAL", value: "abc"},
		{name: "negative interest", key: "DEFAULT_INTEREST_PCT", value: "-1"},
		{name: "bad interval", key: "DEFAULT_INTERVAL", value: "DAILY"},
		{name: "bad interval mode", key: "MONTHLY_INTERVAL_MODE", value: "lunar"},
		{name: "bad cron", key: "SCHEDULER_CRON", value: "every day"},
		{name: "bad health timeout", key: "HEALTH_CHECK_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("DEFAULT_TENURE", "0")

	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, 50, cfg.Business.DefaultTenure)
	assert.Equal(t, 2, cfg.Business.DelinquencyThreshold)
}
