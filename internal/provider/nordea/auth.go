package nordea

import (
	"payconnect/internal/domain/credential"
	"payconnect/internal/provider"
)

// authFromBundle maps a signature-key bundle: key1 is the client id, api_key
// the client secret and api_secret the eIDAS private key PEM.
func authFromBundle(auth credential.AuthType) (provider.SignedAuth, error) {
	if auth.Kind != credential.SignatureKey {
		return provider.SignedAuth{}, provider.NewFailedToObtainAuthType("auth_type")
	}
	switch {
	case auth.Key1.IsEmpty():
		return provider.SignedAuth{}, provider.NewFailedToObtainAuthType("key1")
	case auth.APIKey.IsEmpty():
		return provider.SignedAuth{}, provider.NewFailedToObtainAuthType("api_key")
	case auth.APISecret.IsEmpty():
		return provider.SignedAuth{}, provider.NewFailedToObtainAuthType("api_secret")
	}
	return provider.SignedAuth{
		ClientID:     auth.Key1,
		ClientSecret: auth.APIKey,
		PrivateKey:   auth.APISecret,
	}, nil
}
