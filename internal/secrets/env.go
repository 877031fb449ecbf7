package secrets

import (
	"context"
	"os"

	"github.com/thehillman215/vectorbid/internal/apierrors"
)

// envProvider resolves secrets straight from environment variables. It is
// the default provider when no Vault address is configured.
type envProvider struct {
	names map[string]string
}

// NewEnvProvider builds a Provider backed by os.Getenv, mapping the
// secret names declared in secrets.go to the env vars
// EXPORT_SIGNING_SECRET, API_KEY_EXPORT, LLM_PRIMARY_KEY and
// LLM_SECONDARY_KEY.
func NewEnvProvider() Provider {
	return &envProvider{
		names: map[string]string{
			ExportSigningSecret: "EXPORT_SIGNING_SECRET",
			ExportAPIKey:        "API_KEY_EXPORT",
			LLMPrimaryKey:       "LLM_PRIMARY_KEY",
			LLMSecondaryKey:     "LLM_SECONDARY_KEY",
		},
	}
}

func (p *envProvider) Get(_ context.Context, name string) (string, error) {
	envKey, ok := p.names[name]
	if !ok {
		return "", apierrors.NewNotFound("secrets.Get", "unknown secret name: "+name)
	}
	v := os.Getenv(envKey)
	if v == "" {
		return "", apierrors.NewNotFound("secrets.Get", "secret not set: "+envKey)
	}
	return v, nil
}
