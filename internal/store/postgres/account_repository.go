package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payconnect/internal/domain/credential"
)

const accountColumns = `id, merchant_id, connector, auth_kind, api_key_enc, key1_enc, api_secret_enc, metadata, is_active`

// accountRepository implements AccountRepository interface with pure data access
type accountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new merchant connector account repository
func NewAccountRepository(db *pgxpool.Pool) *accountRepository {
	return &accountRepository{db: db}
}

// Save upserts an account. Secrets are stored as already encrypted.
func (r *accountRepository) Save(ctx context.Context, a *credential.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO merchant_connector_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET auth_kind = EXCLUDED.auth_kind, api_key_enc = EXCLUDED.api_key_enc,
		    key1_enc = EXCLUDED.key1_enc, api_secret_enc = EXCLUDED.api_secret_enc,
		    metadata = EXCLUDED.metadata, is_active = EXCLUDED.is_active, updated_at = now()`,
		a.ID, a.MerchantID, a.Connector, string(a.AuthKind),
		a.APIKeyEnc, a.Key1Enc, a.APISecretEnc, nullableJSON(a.Metadata), a.IsActive)
	return err
}

// FindByID finds an account by ID
func (r *accountRepository) FindByID(ctx context.Context, id string) (*credential.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM merchant_connector_accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// FindActive finds the active account a merchant uses for a connector.
func (r *accountRepository) FindActive(ctx context.Context, merchantID, connector string) (*credential.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM merchant_connector_accounts
		WHERE merchant_id = $1 AND connector = $2 AND is_active = true`, merchantID, connector)
	return scanAccount(row)
}

// ListByMerchant lists the merchant's active accounts
func (r *accountRepository) ListByMerchant(ctx context.Context, merchantID string) ([]*credential.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM merchant_connector_accounts
		WHERE merchant_id = $1 AND is_active = true
		ORDER BY connector`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*credential.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Deactivate marks an account as inactive
func (r *accountRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE merchant_connector_accounts
		SET is_active = false, updated_at = now()
		WHERE id = $1`, id)
	return err
}

// scanAccount scans a single row into the account domain object
func scanAccount(row pgx.Row) (*credential.Account, error) {
	var a credential.Account
	var kind string
	var metadata []byte
	err := row.Scan(&a.ID, &a.MerchantID, &a.Connector, &kind,
		&a.APIKeyEnc, &a.Key1Enc, &a.APISecretEnc, &metadata, &a.IsActive)
	if err != nil {
		return nil, notFound(err)
	}
	a.AuthKind = credential.AuthKind(kind)
	a.Metadata = metadata
	return &a, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
