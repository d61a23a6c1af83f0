package merchant

import (
	"fmt"
	"strings"
)

// Merchant owns connector accounts and API keys.
type Merchant struct {
	ID     string
	Name   string
	Status Status
}

// Status represents merchant status
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// APIKey is a hashed merchant API key.
type APIKey struct {
	ID         int64
	MerchantID string
	Name       string
	KeyHash    string
	IsActive   bool
}

// NewMerchant creates a new merchant with validation
func NewMerchant(id, name string) (*Merchant, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("merchant id is required")
	}
	if len(name) < 2 || len(name) > 100 {
		return nil, fmt.Errorf("merchant name must be between 2 and 100 characters")
	}
	return &Merchant{ID: id, Name: name, Status: StatusActive}, nil
}

// NewAPIKey creates a new API key with validation
func NewAPIKey(merchantID, name, keyHash string) (*APIKey, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, fmt.Errorf("merchant id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	if keyHash == "" {
		return nil, fmt.Errorf("key hash is required")
	}
	return &APIKey{MerchantID: merchantID, Name: name, KeyHash: keyHash, IsActive: true}, nil
}

// IsActive checks if merchant is active
func (m *Merchant) IsActive() bool {
	return m.Status == StatusActive
}
