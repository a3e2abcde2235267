package redis

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/viewstate"
)

func TestWindowKey(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "ratelimit:1.2.3.4:"+strconv.FormatInt(start.Unix(), 10), windowKey("1.2.3.4", start))
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.ErrorContains(t, err, "127.0.0.1:1 unreachable")
}

// Integration tests run against a live server when REDIS_TEST_ADDR is set.
func testClient(t *testing.T) *Client {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRateLimiter_Integration(t *testing.T) {
	c := testClient(t)
	rl := NewRateLimiter(c, 2, 1)
	rl.clock = clock.NewFixed(time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC))
	ctx := context.Background()
	require.NoError(t, rl.Reset(ctx, "test"))

	for i := 0; i < 3; i++ {
		ok, _, _, err := rl.Allow(ctx, "test")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, remaining, reset, err := rl.Allow(ctx, "test")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC), reset)
}

func TestViewStore_Integration(t *testing.T) {
	c := testClient(t)
	store := NewViewStore(c, time.Minute)
	ctx := context.Background()

	state := viewstate.New("2024-03-01")
	state.WorkspaceID = "w1"
	require.NoError(t, store.Save(ctx, "v1", state))

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, daterange.Single("2024-03-01"), got.Query)
	assert.Equal(t, "w1", got.WorkspaceID)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, err = store.Get(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
}
