package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisRevoker(t *testing.T) (*RedisRevoker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	r, err := NewRedisRevoker(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		mr.Close()
		t.Fatalf("failed to create revoker: %v", err)
	}

	t.Cleanup(func() {
		r.Close()
		mr.Close()
	})
	return r, mr
}

func TestRedisRevoker_RevokeAndCheck(t *testing.T) {
	r, mr := setupRedisRevoker(t)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists(revokedKeyPrefix+"jti-1"))

	mr.FastForward(2 * time.Hour)

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker_ExpiredTokenIsNotStored(t *testing.T) {
	r, mr := setupRedisRevoker(t)

	require.NoError(t, r.Revoke(context.Background(), "jti-old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedKeyPrefix+"jti-old"))
}

func TestRedisRevoker_ServerDown(t *testing.T) {
	r, mr := setupRedisRevoker(t)
	mr.Close()

	_, err := r.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestNewRedisRevoker_InvalidURL(t *testing.T) {
	r, err := NewRedisRevoker(context.Background(), "://bad")
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestNoopRevoker(t *testing.T) {
	var r Revoker = NoopRevoker{}
	require.NoError(t, r.Revoke(context.Background(), "x", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, revoked)
}
