// Package signingtest holds a fixed RSA key pair and known-answer vectors
// shared by the signing, provider and connector test suites.
package signingtest

import (
	_ "embed"
	"strings"
)

var (
	//go:embed testdata/rsa_pkcs1.pem
	PKCS1PrivateKeyPEM string

	//go:embed testdata/rsa_pkcs8.pem
	PKCS8PrivateKeyPEM string

	//go:embed testdata/rsa_public.pem
	PublicKeyPEM string

	//go:embed testdata/scenario_a.sig
	scenarioASignature string

	//go:embed testdata/scenario_b.sig
	scenarioBSignature string
)

// Fixed inputs of the two reference requests.
const (
	Host = "api.example.com"
	Date = "Wed, 14 Oct 2026 08:00:00 GMT"

	ScenarioABody   = `{"amount":"10.00"}`
	ScenarioADigest = "sha-256=6etJWsy84qDpW74Hm5+eQsyuIDccFRbj7TA20qeHz1M="
	ScenarioAPath   = "/v5/payments"

	ScenarioBPathWithQuery = "/v5/payments/123?foo=bar"

	EmptyBodyDigest = "sha-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="

	// FormBody is the literal wire form of amount=10.00, currency=EUR, reference="inv 42".
	FormBody       = "amount=10.00&currency=EUR&reference=inv+42"
	FormBodyDigest = "sha-256=O8Dmk5UspaAqlfv4wNwBm0CESYB90iPCiObQHueLA+M="
)

// ScenarioACanonical is the signing string of a POST with a JSON body.
const ScenarioACanonical = "(request-target) post /v5/payments\n" +
	"x-originating-host: api.example.com\n" +
	"x-originating-date: Wed, 14 Oct 2026 08:00:00 GMT\n" +
	"content-type: application/json\n" +
	"digest: sha-256=6etJWsy84qDpW74Hm5+eQsyuIDccFRbj7TA20qeHz1M="

// ScenarioBCanonical is the signing string of a GET with a query string.
const ScenarioBCanonical = "(request-target) get /v5/payments/123?foo=bar\n" +
	"x-originating-host: api.example.com\n" +
	"x-originating-date: Wed, 14 Oct 2026 08:00:00 GMT"

// ScenarioASignature is the base64 RSA-SHA256 signature of ScenarioACanonical.
func ScenarioASignature() string { return strings.TrimSpace(scenarioASignature) }

// ScenarioBSignature is the base64 RSA-SHA256 signature of ScenarioBCanonical.
func ScenarioBSignature() string { return strings.TrimSpace(scenarioBSignature) }
