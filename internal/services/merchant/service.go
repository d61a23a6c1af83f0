package merchant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"payconnect/internal/domain/credential"
	"payconnect/internal/domain/merchant"
	"payconnect/internal/masking"
	"payconnect/internal/provider"
	"payconnect/internal/store/postgres"
	"payconnect/internal/store/repositories"
)

// ErrMerchantNotFound is returned when configuring an unknown merchant.
var ErrMerchantNotFound = errors.New("merchant not found")

// OnboardingRequest represents merchant onboarding data
type OnboardingRequest struct {
	Name       string `json:"name"`
	APIKeyName string `json:"apiKeyName,omitempty"`
}

// OnboardingResponse carries the plaintext API key, shown exactly once.
type OnboardingResponse struct {
	MerchantID string `json:"merchantId"`
	APIKey     string `json:"apiKey"`
	APIKeyName string `json:"apiKeyName"`
}

// AccountRequest configures one connector for a merchant.
type AccountRequest struct {
	Connector string              `json:"connector"`
	AuthKind  credential.AuthKind `json:"authKind"`
	APIKey    string              `json:"apiKey,omitempty"`
	Key1      string              `json:"key1,omitempty"`
	APISecret string              `json:"apiSecret,omitempty"`
	Metadata  json.RawMessage     `json:"metadata,omitempty"`
}

// AccountResponse never echoes secrets.
type AccountResponse struct {
	AccountID string `json:"accountId"`
	Connector string `json:"connector"`
	AuthKind  string `json:"authKind"`
	Active    bool   `json:"active"`
}

// Catalog reports which connectors are available.
type Catalog interface {
	Info(kind provider.ConnectorKind) (provider.ConnectorInfo, bool)
}

// Service handles merchant onboarding and connector account setup
type Service struct {
	merchantRepo repositories.MerchantRepository
	accountRepo  repositories.AccountRepository
	catalog      Catalog
	aesKey       []byte
}

// NewService creates a new merchant service
func NewService(merchantRepo repositories.MerchantRepository, accountRepo repositories.AccountRepository, catalog Catalog, aesKey []byte) *Service {
	return &Service{
		merchantRepo: merchantRepo,
		accountRepo:  accountRepo,
		catalog:      catalog,
		aesKey:       aesKey,
	}
}

// Onboard creates a merchant and its first API key.
func (s *Service) Onboard(ctx context.Context, req OnboardingRequest) (*OnboardingResponse, error) {
	m, err := merchant.NewMerchant("mer_"+uuid.NewString(), req.Name)
	if err != nil {
		return nil, &ValidationError{Field: "name", Message: err.Error()}
	}
	if err := s.merchantRepo.Save(ctx, m); err != nil {
		return nil, &ServiceError{Op: "save_merchant", Err: err}
	}

	apiKey, keyName, err := s.createAPIKey(ctx, m.ID, req.APIKeyName)
	if err != nil {
		return nil, &ServiceError{Op: "create_api_key", Err: err}
	}
	return &OnboardingResponse{MerchantID: m.ID, APIKey: apiKey, APIKeyName: keyName}, nil
}

// createAPIKey generates and stores a new API key for the merchant
func (s *Service) createAPIKey(ctx context.Context, merchantID, keyName string) (string, string, error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate API key: %w", err)
	}
	apiKey := "pk_" + hex.EncodeToString(keyBytes)

	key, err := merchant.NewAPIKey(merchantID, keyName, postgres.HashAPIKey(apiKey))
	if err != nil {
		return "", "", err
	}
	if err := s.merchantRepo.SaveAPIKey(ctx, key); err != nil {
		return "", "", err
	}
	return apiKey, key.Name, nil
}

// AddAccount encrypts a credential bundle and stores it as the merchant's
// active account for the connector.
func (s *Service) AddAccount(ctx context.Context, merchantID string, req AccountRequest) (*AccountResponse, error) {
	if err := s.validateAccountRequest(&req); err != nil {
		return nil, err
	}
	if _, err := s.merchantRepo.FindByID(ctx, merchantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, &ServiceError{Op: "find_merchant", Err: err}
	}
	acc, err := credential.NewAccount("mca_"+uuid.NewString(), merchantID, req.Connector, req.AuthKind, req.Metadata)
	if err != nil {
		return nil, &ValidationError{Field: "account", Message: err.Error()}
	}
	auth := credential.AuthType{
		Kind:      req.AuthKind,
		APIKey:    masking.NewSecret(req.APIKey),
		Key1:      masking.NewSecret(req.Key1),
		APISecret: masking.NewSecret(req.APISecret),
	}
	if err := acc.SetSecrets(auth, s.aesKey); err != nil {
		return nil, &ServiceError{Op: "encrypt_credentials", Err: err}
	}

	if prev, err := s.accountRepo.FindActive(ctx, merchantID, req.Connector); err == nil {
		if err := s.accountRepo.Deactivate(ctx, prev.ID); err != nil {
			return nil, &ServiceError{Op: "deactivate_account", Err: err}
		}
	}
	if err := s.accountRepo.Save(ctx, acc); err != nil {
		return nil, &ServiceError{Op: "save_account", Err: err}
	}
	return &AccountResponse{AccountID: acc.ID, Connector: acc.Connector, AuthKind: string(acc.AuthKind), Active: acc.IsActive}, nil
}

// ListAccounts returns the merchant's connector accounts without secrets.
func (s *Service) ListAccounts(ctx context.Context, merchantID string) ([]AccountResponse, error) {
	accounts, err := s.accountRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, &ServiceError{Op: "list_accounts", Err: err}
	}
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountResponse{AccountID: a.ID, Connector: a.Connector, AuthKind: string(a.AuthKind), Active: a.IsActive})
	}
	return out, nil
}

// validateAccountRequest checks the connector and the fields its auth kind needs.
func (s *Service) validateAccountRequest(req *AccountRequest) error {
	req.Connector = strings.ToLower(strings.TrimSpace(req.Connector))
	if _, ok := s.catalog.Info(provider.ConnectorKind(req.Connector)); !ok {
		return &ValidationError{Field: "connector", Message: "unknown connector"}
	}
	switch req.AuthKind {
	case credential.HeaderKey:
		if strings.TrimSpace(req.APIKey) == "" {
			return &ValidationError{Field: "apiKey", Message: "api key is required"}
		}
	case credential.BodyKey:
		if strings.TrimSpace(req.APIKey) == "" || strings.TrimSpace(req.Key1) == "" {
			return &ValidationError{Field: "key1", Message: "api key and key1 are required"}
		}
	case credential.SignatureKey:
		if strings.TrimSpace(req.APIKey) == "" || strings.TrimSpace(req.Key1) == "" || strings.TrimSpace(req.APISecret) == "" {
			return &ValidationError{Field: "apiSecret", Message: "api key, key1 and api secret are required"}
		}
	case credential.NoKey:
	default:
		return &ValidationError{Field: "authKind", Message: "must be header_key, body_key, signature_key or no_key"}
	}
	return nil
}

// MerchantByAPIKey resolves the merchant owning a plaintext API key.
func (s *Service) MerchantByAPIKey(ctx context.Context, apiKey string) (*merchant.Merchant, error) {
	return s.merchantRepo.FindByAPIKeyHash(ctx, postgres.HashAPIKey(apiKey))
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ServiceError represents a service operation error
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("merchant service [%s]: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
