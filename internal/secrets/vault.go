package secrets

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/thehillman215/vectorbid/internal/apierrors"
)

// vaultProvider reads secrets out of a single KV-v2 path on every Get;
// the last data read is stored atomically in cached, but Get never
// serves from it. It generalizes the teacher's
// VaultClient.RotateSecrets/currentSecrets pair.
type vaultProvider struct {
	client *api.Client
	path   string
	logger *zap.Logger
	cached atomic.Value // map[string]interface{}
}

// NewVaultProvider builds a Provider backed by a running Vault server.
func NewVaultProvider(address, token, path string, logger *zap.Logger) (Provider, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, apierrors.NewInternal("secrets.NewVaultProvider", "vault client init failed", err)
	}
	if token != "" {
		client.SetToken(token)
	}
	return &vaultProvider{client: client, path: path, logger: logger}, nil
}

// Get returns a secret field from the KV path, refetching from Vault once
// per call since rotated secrets must be visible without a restart.
func (v *vaultProvider) Get(ctx context.Context, name string) (string, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.path)
	if err != nil {
		v.logger.Error("vault read failed", zap.Error(err), zap.String("path", v.path))
		return "", apierrors.NewUpstream("secrets.Get", "vault read failed", err)
	}
	if secret == nil || secret.Data == nil {
		return "", apierrors.NewNotFound("secrets.Get", "no secret data at path: "+v.path)
	}

	data, _ := secret.Data["data"].(map[string]interface{})
	if data == nil {
		data = secret.Data
	}
	v.cached.Store(data)

	raw, ok := data[name]
	if !ok {
		return "", apierrors.NewNotFound("secrets.Get", "field not present: "+name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", apierrors.NewInternal("secrets.Get", "secret field is not a string: "+name, nil)
	}
	return s, nil
}
