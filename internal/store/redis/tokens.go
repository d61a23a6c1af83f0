package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"payconnect/internal/provider"
)

const tokenKeyPrefix = "payconnect:access_token:"

// TokenStore keeps connector access tokens in Redis, expiring with the token.
type TokenStore struct {
	client goredis.UniversalClient
}

func NewTokenStore(client goredis.UniversalClient) *TokenStore {
	return &TokenStore{client: client}
}

// Open connects to addr and pings it.
func Open(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func tokenKey(accountID string) string { return tokenKeyPrefix + accountID }

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get returns nil without error when no token is held.
func (s *TokenStore) Get(ctx context.Context, accountID string) (*provider.AccessToken, error) {
	raw, err := s.client.Get(ctx, tokenKey(accountID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeToken(raw)
}

// Put stores token until its expiry. Tokens without expiry are kept until
// deleted or replaced.
func (s *TokenStore) Put(ctx context.Context, accountID string, token provider.AccessToken) error {
	raw, err := encodeToken(token)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !token.ExpiresAt.IsZero() {
		ttl = time.Until(token.ExpiresAt)
		if ttl <= 0 {
			return s.Delete(ctx, accountID)
		}
	}
	return s.client.Set(ctx, tokenKey(accountID), raw, ttl).Err()
}

func (s *TokenStore) Delete(ctx context.Context, accountID string) error {
	return s.client.Del(ctx, tokenKey(accountID)).Err()
}

func encodeToken(t provider.AccessToken) ([]byte, error) {
	return json.Marshal(storedToken{Token: t.Token, ExpiresAt: t.ExpiresAt.UTC()})
}

func decodeToken(raw []byte) (*provider.AccessToken, error) {
	var st storedToken
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	return &provider.AccessToken{Token: st.Token, ExpiresAt: st.ExpiresAt}, nil
}
