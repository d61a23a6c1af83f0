// Package connectors assembles the connector registry from configuration.
package connectors

import (
	"fmt"
	"time"

	"payconnect/internal/provider"
	"payconnect/internal/provider/monei"
	"payconnect/internal/provider/nordea"
	"payconnect/internal/signing"
)

// Options selects base URLs and signing behavior.
type Options struct {
	NordeaBaseURL string
	MoneiBaseURL  string
	// GenericNordeaHeaders switches Nordea to the X-Client-Id / X-Originating-*
	// header names.
	GenericNordeaHeaders bool
	KeyCacheTTL          time.Duration
	Clock                func() time.Time
}

// NewRegistry builds every known connector and validates them against the
// embedded catalog.
func NewRegistry(opts Options) (*provider.Registry, error) {
	reg, _, err := Build(opts)
	return reg, err
}

// Build is NewRegistry that also returns the shared request signer so its
// key cache can be swept.
func Build(opts Options) (*provider.Registry, *signing.Signer, error) {
	catalog, err := provider.LoadCatalog()
	if err != nil {
		return nil, nil, err
	}

	scheme := provider.NordeaHeaders
	if opts.GenericNordeaHeaders {
		scheme = provider.GenericHeaders
	}
	signer := signing.NewSigner(scheme.Signing, signing.WithKeyCache(opts.KeyCacheTTL))
	headers := provider.NewHeaderBuilder(scheme, signer)
	if opts.Clock != nil {
		headers = headers.WithClock(opts.Clock)
	}

	nordeaInfo, ok := catalog.Lookup(provider.Nordea)
	if !ok {
		return nil, nil, fmt.Errorf("catalog has no %s entry", provider.Nordea)
	}
	n, err := nordea.New(nordea.Config{BaseURL: opts.NordeaBaseURL, Info: nordeaInfo, Headers: headers})
	if err != nil {
		return nil, nil, err
	}

	moneiInfo, ok := catalog.Lookup(provider.Monei)
	if !ok {
		return nil, nil, fmt.Errorf("catalog has no %s entry", provider.Monei)
	}
	m, err := monei.New(monei.Config{BaseURL: opts.MoneiBaseURL, Info: moneiInfo})
	if err != nil {
		return nil, nil, err
	}

	reg, err := provider.NewRegistry(catalog, n, m)
	if err != nil {
		return nil, nil, err
	}
	return reg, signer, nil
}
