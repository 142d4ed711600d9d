//go:build integration

package redislock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campbook/internal/infra/redislock"
	"campbook/internal/pkg/config"
	"campbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redislock.NewClient(config.RedisConfig{Addr: endpoint})
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSiteLocker(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	locker := redislock.NewSiteLocker(client, 5*time.Second)

	t.Run("second lock on the same site fails until released", func(t *testing.T) {
		site := uuid.New()
		unlock, err := locker.Lock(ctx, site)
		require.NoError(t, err)

		_, err = locker.Lock(ctx, site)
		assert.True(t, errs.Is(err, errs.ErrSiteLocked))

		other, err := locker.Lock(ctx, uuid.New())
		require.NoError(t, err)
		other()

		unlock()
		again, err := locker.Lock(ctx, site)
		require.NoError(t, err)
		again()
	})

	t.Run("stale unlock does not release a newer holder", func(t *testing.T) {
		short := redislock.NewSiteLocker(client, 50*time.Millisecond)
		site := uuid.New()
		staleUnlock, err := short.Lock(ctx, site)
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)

		unlock, err := locker.Lock(ctx, site)
		require.NoError(t, err)
		staleUnlock()

		_, err = locker.Lock(ctx, site)
		assert.True(t, errs.Is(err, errs.ErrSiteLocked))
		unlock()
	})

	t.Run("one winner under contention", func(t *testing.T) {
		site := uuid.New()
		var wins atomic.Int32
		var wg sync.WaitGroup
		unlocks := make(chan func(), 20)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if unlock, err := locker.Lock(ctx, site); err == nil {
					wins.Add(1)
					unlocks <- unlock
				}
			}()
		}
		wg.Wait()
		close(unlocks)
		for u := range unlocks {
			u()
		}
		assert.EqualValues(t, 1, wins.Load())
	})
}
