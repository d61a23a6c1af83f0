package repositories

import (
	"context"
	"errors"

	"payconnect/internal/domain/credential"
	"payconnect/internal/domain/merchant"
	"payconnect/internal/provider"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// AccountRepository defines the contract for merchant connector account data access
type AccountRepository interface {
	Save(ctx context.Context, acc *credential.Account) error
	FindByID(ctx context.Context, id string) (*credential.Account, error)
	FindActive(ctx context.Context, merchantID, connector string) (*credential.Account, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]*credential.Account, error)
	Deactivate(ctx context.Context, id string) error
}

// MerchantRepository defines the contract for merchant data access
type MerchantRepository interface {
	Save(ctx context.Context, m *merchant.Merchant) error
	FindByID(ctx context.Context, id string) (*merchant.Merchant, error)
	FindByAPIKeyHash(ctx context.Context, keyHash string) (*merchant.Merchant, error)
	SaveAPIKey(ctx context.Context, key *merchant.APIKey) error
}

// TokenStore holds caller-managed connector access tokens per account.
type TokenStore interface {
	Get(ctx context.Context, accountID string) (*provider.AccessToken, error)
	Put(ctx context.Context, accountID string, token provider.AccessToken) error
	Delete(ctx context.Context, accountID string) error
}
