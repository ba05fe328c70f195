package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-ledger/internal/domain"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c StatusCache = Noop{}

	gen, err := c.Generation(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "user-1", time.Now(), gen, &domain.LoanStatus{}))
	status, ok, err := c.Get(ctx, "user-1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, status)
	assert.NoError(t, c.Invalidate(ctx, "user-1"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "loan_status:user-1", statusKey("user-1"))
	assert.Equal(t, "loan_status_gen:user-1", generationKey("user-1"))

	jakarta := time.FixedZone("WIB", 7*3600)
	ref := time.Date(2024, 1, 8, 7, 0, 0, 0, jakarta)
	assert.Equal(t, "2024-01-08T00:00:00Z", refField(ref))
}

// Needs a running redis; set REDIS_TEST_ADDR to enable.
func TestRedisStatusCache(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	c := NewRedisStatusCache(client, time.Minute)
	userID := "user-" + uuid.NewString()
	ref := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	_, ok, err := c.Get(ctx, userID, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	status := &domain.LoanStatus{
		OutstandingBalance: decimal.NewFromInt(5390000),
		LatePaymentCount:   0,
		NextDueDate:        "2024-01-08T00:00:00Z",
		PayableAmount:      decimal.NewFromInt(110000),
		BillCount:          1,
		FirstBillSeqNum:    1,
	}
	gen, err := c.Generation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)
	require.NoError(t, c.Set(ctx, userID, ref, gen, status))

	got, ok, err := c.Get(ctx, userID, ref)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.OutstandingBalance.Equal(status.OutstandingBalance))
	assert.Equal(t, status.NextDueDate, got.NextDueDate)

	require.NoError(t, c.Invalidate(ctx, userID))
	_, ok, err = c.Get(ctx, userID, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	// a status computed before the invalidation must not be stored
	require.NoError(t, c.Set(ctx, userID, ref, gen, status))
	_, ok, err = c.Get(ctx, userID, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Generation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	require.NoError(t, c.Set(ctx, userID, ref, next, status))
	_, ok, err = c.Get(ctx, userID, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	client.Del(ctx, statusKey(userID), generationKey(userID))
}
