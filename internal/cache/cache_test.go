package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kiranshivaraju/cvforge/internal/cache"
)

// setupRedis spins up a Redis container and returns a connected RedisCache + cleanup.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisURL := "redis://" + host + ":" + port.Port()
	rc, err := cache.NewRedisCache(redisURL)
	require.NoError(t, err)

	return rc
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	require.NoError(t, rc.Ping(context.Background()))
}

func TestSetGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k", []byte("v"), time.Minute))

	val, found, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, rc.Delete(ctx, "k"))
	_, found, err = rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJobStage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	jobID := "1712345678901234567"

	_, found, err := rc.GetJobStage(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rc.SetJobStage(ctx, jobID, cache.StagePending, time.Minute))
	require.NoError(t, rc.SetJobStage(ctx, jobID, cache.StageCompleted, time.Minute))

	stage, found, err := rc.GetJobStage(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cache.StageCompleted, stage)
}

func TestIncrWithExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	n, err := rc.IncrWithExpiry(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = rc.IncrWithExpiry(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestIncrWithExpiry_WindowNotExtendedByTraffic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	n, err := rc.IncrWithExpiry(ctx, "window", 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// Increments inside the window must not push the expiry out.
	time.Sleep(1100 * time.Millisecond)
	n, err = rc.IncrWithExpiry(ctx, "window", 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	time.Sleep(1100 * time.Millisecond)
	n, err = rc.IncrWithExpiry(ctx, "window", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter should have expired at the original deadline")
}
