package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/jackc/pgx/v5/pgxpool"

	"payconnect/internal/domain/merchant"
)

// merchantRepository implements MerchantRepository interface
type merchantRepository struct {
	db *pgxpool.Pool
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *pgxpool.Pool) *merchantRepository {
	return &merchantRepository{db: db}
}

// Save upserts a merchant
func (r *merchantRepository) Save(ctx context.Context, m *merchant.Merchant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO merchants (id, name, status) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status, updated_at = now()`,
		m.ID, m.Name, string(m.Status))
	return err
}

// FindByID finds a merchant by ID
func (r *merchantRepository) FindByID(ctx context.Context, id string) (*merchant.Merchant, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, status FROM merchants WHERE id = $1`, id)
	var m merchant.Merchant
	var status string
	if err := row.Scan(&m.ID, &m.Name, &status); err != nil {
		return nil, notFound(err)
	}
	m.Status = merchant.Status(status)
	return &m, nil
}

// FindByAPIKeyHash finds the merchant owning an active API key
func (r *merchantRepository) FindByAPIKeyHash(ctx context.Context, keyHash string) (*merchant.Merchant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT m.id, m.name, m.status
		FROM merchant_api_keys k
		JOIN merchants m ON m.id = k.merchant_id
		WHERE k.key_hash = $1 AND k.is_active = true`, keyHash)
	var m merchant.Merchant
	var status string
	if err := row.Scan(&m.ID, &m.Name, &status); err != nil {
		return nil, notFound(err)
	}
	m.Status = merchant.Status(status)
	return &m, nil
}

// SaveAPIKey stores a hashed API key for a merchant.
func (r *merchantRepository) SaveAPIKey(ctx context.Context, k *merchant.APIKey) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO merchant_api_keys (merchant_id, name, key_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, k.MerchantID, k.Name, k.KeyHash, k.IsActive).Scan(&k.ID)
}

// Helper to pre-hash API keys for seeding
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
