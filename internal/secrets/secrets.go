// Package secrets provides the export-signing and LLM API key material to
// the pipeline behind a single Provider interface, generalizing the
// teacher's common/security/VaultClient.go atomic-secret-bundle pattern.
package secrets

import "context"

// Provider resolves a named secret to its current value. Implementations
// may cache, rotate, or fetch live; callers never assume either.
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

// Well-known secret names used across the pipeline.
const (
	ExportSigningSecret = "export_signing_secret"
	ExportAPIKey        = "export_api_key"
	LLMPrimaryKey       = "llm_primary_key"
	LLMSecondaryKey     = "llm_secondary_key"
)
