package monei

import (
	"payconnect/internal/domain/credential"
	"payconnect/internal/masking"
	"payconnect/internal/provider"
)

// apiKeyFromBundle extracts the account API key, sent verbatim as the
// Authorization header.
func apiKeyFromBundle(auth credential.AuthType) (masking.Secret, error) {
	if auth.Kind != credential.HeaderKey {
		return masking.Secret{}, provider.NewFailedToObtainAuthType("auth_type")
	}
	if auth.APIKey.IsEmpty() {
		return masking.Secret{}, provider.NewFailedToObtainAuthType("api_key")
	}
	return auth.APIKey, nil
}
