package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mwhitfield/skillforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(16)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	_, found, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(16)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "expired entries must not be returned")
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	// Touch "a" so "b" becomes the eviction candidate.
	_, _, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Minute))

	_, found, _ := c.Get(ctx, "b")
	assert.False(t, found, "least recently used entry evicted")
	_, found, _ = c.Get(ctx, "a")
	assert.True(t, found)
	_, found, _ = c.Get(ctx, "c")
	assert.True(t, found)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(16)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, found, _ := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCacheIncrWithExpiry(t *testing.T) {
	c := NewMemoryCache(16)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.IncrWithExpiry(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := c.IncrWithExpiry(ctx, "counter2", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	time.Sleep(20 * time.Millisecond)
	got, err = c.IncrWithExpiry(ctx, "counter2", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "expired counter restarts at 1")
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(models.ContentTypeProcess, "some content")
	b := Fingerprint(models.ContentTypeProcess, "some content")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, Fingerprint(models.ContentTypeTechnical, "some content"),
		"content type is part of the fingerprint")
	assert.NotEqual(t, a, Fingerprint(models.ContentTypeProcess, "other content"))
	assert.Len(t, a, 64)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "analysis:abc", AnalysisKey("abc"))
	assert.Equal(t, "ratelimit:sf_12345", RateLimitKey("sf_12345"))
}

// setupRedis starts a throwaway Redis container and returns its URL.
func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	c, err := NewRedisCache(setupRedis(t))
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	val, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	_, found, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Delete(ctx, "k"))
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)

	n, err := c.IncrWithExpiry(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.IncrWithExpiry(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
