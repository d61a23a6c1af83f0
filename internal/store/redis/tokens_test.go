package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/provider"
)

func TestTokenCodec(t *testing.T) {
	exp := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	raw, err := encodeToken(provider.AccessToken{Token: "abc", ExpiresAt: exp})
	require.NoError(t, err)

	got, err := decodeToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Token)
	assert.True(t, exp.Equal(got.ExpiresAt))

	raw, err = encodeToken(provider.AccessToken{Token: "forever"})
	require.NoError(t, err)
	got, err = decodeToken(raw)
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.IsZero())
	assert.True(t, got.Valid(time.Now()))

	_, err = decodeToken([]byte("not json"))
	assert.Error(t, err)
}

func TestTokenKey(t *testing.T) {
	assert.Equal(t, "payconnect:access_token:mca_1", tokenKey("mca_1"))
}

func TestUnreachableRedisSurfacesErrors(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	store := NewTokenStore(client)

	_, err := store.Get(context.Background(), "mca_1")
	assert.Error(t, err)

	_, err = Open(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}
