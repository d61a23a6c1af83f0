// Package memory provides in-process repositories for tests and local runs
// without Postgres or Redis.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"payconnect/internal/domain/credential"
	"payconnect/internal/domain/merchant"
	"payconnect/internal/provider"
	"payconnect/internal/store/repositories"
)

type Accounts struct {
	mu   sync.RWMutex
	byID map[string]credential.Account
}

func NewAccounts() *Accounts { return &Accounts{byID: make(map[string]credential.Account)} }

func (r *Accounts) Save(_ context.Context, a *credential.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = *a
	return nil
}

func (r *Accounts) FindByID(_ context.Context, id string) (*credential.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r *Accounts) FindActive(_ context.Context, merchantID, connector string) (*credential.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byID {
		if a.MerchantID == merchantID && a.Connector == connector && a.IsActive {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *Accounts) ListByMerchant(_ context.Context, merchantID string) ([]*credential.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*credential.Account
	for _, a := range r.byID {
		if a.MerchantID == merchantID && a.IsActive {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Connector < out[j].Connector })
	return out, nil
}

func (r *Accounts) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.IsActive = false
		r.byID[id] = a
	}
	return nil
}

type Merchants struct {
	mu        sync.RWMutex
	byID      map[string]merchant.Merchant
	keys      map[string]merchant.APIKey
	nextKeyID int64
}

func NewMerchants() *Merchants {
	return &Merchants{byID: make(map[string]merchant.Merchant), keys: make(map[string]merchant.APIKey)}
}

func (r *Merchants) Save(_ context.Context, m *merchant.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = *m
	return nil
}

func (r *Merchants) FindByID(_ context.Context, id string) (*merchant.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (r *Merchants) FindByAPIKeyHash(_ context.Context, keyHash string) (*merchant.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[keyHash]
	if !ok || !k.IsActive {
		return nil, repositories.ErrNotFound
	}
	m, ok := r.byID[k.MerchantID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (r *Merchants) SaveAPIKey(_ context.Context, k *merchant.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextKeyID++
	k.ID = r.nextKeyID
	r.keys[k.KeyHash] = *k
	return nil
}

// Tokens drops tokens once they expire, like the Redis store.
type Tokens struct {
	mu     sync.Mutex
	tokens map[string]provider.AccessToken
	now    func() time.Time
}

func NewTokens() *Tokens {
	return &Tokens{tokens: make(map[string]provider.AccessToken), now: time.Now}
}

func (s *Tokens) Get(_ context.Context, accountID string) (*provider.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[accountID]
	if !ok {
		return nil, nil
	}
	if !t.Valid(s.now()) {
		delete(s.tokens, accountID)
		return nil, nil
	}
	return &t, nil
}

func (s *Tokens) Put(_ context.Context, accountID string, token provider.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[accountID] = token
	return nil
}

func (s *Tokens) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, accountID)
	return nil
}

var (
	_ repositories.AccountRepository  = (*Accounts)(nil)
	_ repositories.MerchantRepository = (*Merchants)(nil)
	_ repositories.TokenStore         = (*Tokens)(nil)
)
