// Package cache keeps computed loan statuses in redis so repeated reads
// for the same reference date skip the bill scan.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-ledger/internal/domain"
)

// StatusCache stores LoanStatus values per user and reference date.
//
// Every Invalidate bumps the user's generation. Callers read Generation
// before loading a status and pass it to Set, which drops the write when an
// invalidation happened in between.
type StatusCache interface {
	Get(ctx context.Context, userID string, ref time.Time) (*domain.LoanStatus, bool, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, ref time.Time, gen int64, status *domain.LoanStatus) error
	// Invalidate drops every cached status of the user
	Invalidate(ctx context.Context, userID string) error
}

// errStaleGeneration aborts a Set whose status was computed before an invalidation.
var errStaleGeneration = errors.New("status cache generation changed")

// RedisStatusCache keeps one hash per user, one field per reference date,
// so a single DEL invalidates all of them.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{client: client, ttl: ttl}
}

func statusKey(userID string) string {
	return fmt.Sprintf("loan_status:%s", userID)
}

func generationKey(userID string) string {
	return fmt.Sprintf("loan_status_gen:%s", userID)
}

func refField(ref time.Time) string {
	return ref.UTC().Format(time.RFC3339Nano)
}

func (c *RedisStatusCache) Get(ctx context.Context, userID string, ref time.Time) (*domain.LoanStatus, bool, error) {
	raw, err := c.client.HGet(ctx, statusKey(userID), refField(ref)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var status domain.LoanStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, false, fmt.Errorf("decode cached status: %w", err)
	}
	return &status, true, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, userID string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisStatusCache) Generation(ctx context.Context, userID string) (int64, error) {
	return readGeneration(ctx, c.client, userID)
}

// Set stores status only while the user's generation still equals gen.
// A lost race is not an error; the write is simply skipped.
func (c *RedisStatusCache) Set(ctx context.Context, userID string, ref time.Time, gen int64, status *domain.LoanStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}

	key := statusKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, refField(ref), raw)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, generationKey(userID))

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Del(ctx, statusKey(userID))
		return nil
	})
	return err
}

// Noop is used when no redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, time.Time) (*domain.LoanStatus, bool, error) {
	return nil, false, nil
}

func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }

func (Noop) Set(context.Context, string, time.Time, int64, *domain.LoanStatus) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
