package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_AddContains(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()
	token := "access-token-1"
	require.NoError(t, bl.Add(ctx, token, 2*time.Second))

	ok, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	m.FastForward(3 * time.Second)

	ok2, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	require.False(t, ok2)
}

func TestBlacklist_ExpiredTTLIgnored(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.NoError(t, bl.Add(context.Background(), "gone", -time.Second))
	require.False(t, m.Exists(blacklistPrefix+"gone"))
}

func TestBlacklist_NoClient_Noop(t *testing.T) {
	for _, bl := range []*Blacklist{nil, NewBlacklist(nil)} {
		ctx := context.Background()
		require.NoError(t, bl.Add(ctx, "no-client-token", time.Second))
		ok, err := bl.Contains(ctx, "no-client-token")
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestBlacklist_Memory(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	bl := &Blacklist{store: newMemoryRevocations(func() time.Time { return clock })}
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "tok", time.Minute))
	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = bl.Contains(ctx, "other")
	require.NoError(t, err)
	require.False(t, ok)

	clock = clock.Add(2 * time.Minute)
	ok, err = bl.Contains(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewMemoryBlacklist_RevokesUntilExpiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()
	require.NoError(t, bl.Add(ctx, "tok", time.Hour))
	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
}
