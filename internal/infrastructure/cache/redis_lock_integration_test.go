//go:build integration

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisConfig(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{
		Enabled:      true,
		Host:         host,
		Port:         port.Int(),
		LockTTL:      5 * time.Second,
		LockWait:     2 * time.Second,
		LockInterval: 10 * time.Millisecond,
	}
}

func TestRedisLocker(t *testing.T) {
	cfg := newRedisConfig(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	locker := NewLocker(cfg, client, nil)
	_, ok := locker.(*RedisLocker)
	require.True(t, ok)

	t.Run("mutual exclusion", func(t *testing.T) {
		var mu sync.Mutex
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "ledger-1")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				counter++
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, counter)
	})

	t.Run("timeout while held", func(t *testing.T) {
		short := NewRedisLocker(client, WithLockWait(50*time.Millisecond), WithRetryInterval(10*time.Millisecond))
		unlock, err := short.Lock(ctx, "ledger-2")
		require.NoError(t, err)
		defer unlock()

		_, err = short.Lock(ctx, "ledger-2")
		assert.ErrorIs(t, err, ErrLockTimeout)
	})

	t.Run("release only own token", func(t *testing.T) {
		l := NewRedisLocker(client, WithLockTTL(100*time.Millisecond))
		unlock, err := l.Lock(ctx, "ledger-3")
		require.NoError(t, err)

		time.Sleep(200 * time.Millisecond)
		other, err := l.Lock(ctx, "ledger-3")
		require.NoError(t, err)

		unlock() // expired token must not delete the new holder's key
		val, err := client.Get(ctx, lockKeyPrefix+"ledger-3").Result()
		require.NoError(t, err)
		assert.NotEmpty(t, val)
		other()
	})
}
