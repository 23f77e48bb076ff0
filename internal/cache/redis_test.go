package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-management/internal/config"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	c, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	expected := models.AttendanceStats{
		TotalGymAttendances:   3,
		TotalClassAttendances: 1,
		MonthlyStats: []models.MonthlyStat{
			{Month: "2025-03", GymCount: 3},
			{Month: "2025-04", ClassCount: 1},
		},
	}
	require.NoError(t, c.Set(ctx, "stats:1", expected, time.Minute))

	var actual models.AttendanceStats
	found, err := c.Get(ctx, "stats:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	c, _ := setupTestCache(t)

	var out models.Membership
	found, err := c.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetCorruptedValue(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set("membership:1", "{not json"))

	var out models.Membership
	found, err := c.Get(context.Background(), "membership:1", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "temp", "value", time.Second))
	mr.FastForward(2 * time.Second)

	var out string
	found, err := c.Get(ctx, "temp", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "memberships:all", []int{1, 2}, time.Minute))
	require.NoError(t, c.Set(ctx, "membership:1", 1, time.Minute))

	require.NoError(t, c.Invalidate(ctx, "memberships:all", "membership:1", "missing"))
	assert.False(t, mr.Exists("memberships:all"))
	assert.False(t, mr.Exists("membership:1"))

	assert.NoError(t, c.Invalidate(ctx))
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.RedisConnection{AddressRedis: addr, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.InitServer")
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7f1c2a9e-0d6b-4b1e-9a3c-2f4d5e6a7b8c")
	assert.Equal(t, "stats:7f1c2a9e-0d6b-4b1e-9a3c-2f4d5e6a7b8c", StatsKey(id))
	assert.Equal(t, "membership:42", MembershipKey(42))
	assert.Equal(t, "memberships:all", MembershipsAllKey)
}
