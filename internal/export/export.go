// Package export renders a BidLayerArtifact to an airline's PBS text
// dialect byte-stably, then signs the rendering so a recipient can
// verify it was not altered in transit.
package export

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/secrets"
)

// Render produces the byte-stable PBS2 text rendering of artifact. Two
// calls with an identical artifact must produce identical bytes
// (spec.md §8 "byte-stable export"): layers are rendered strictly in
// ascending N order and filter values are never reordered by this
// function, since the layer generator already emits them in the one
// canonical order.
func Render(artifact domain.BidLayerArtifact) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "AIRLINE=%s\nMONTH=%s\nFORMAT=%s\n", artifact.Airline, artifact.Month, artifact.Format)
	for _, layer := range artifact.Layers {
		fmt.Fprintf(&b, "LAYER %d %s\n", layer.N, layer.Prefer)
		for _, f := range layer.Filters {
			fmt.Fprintf(&b, "  FILTER %s %s %s\n", f.Type, f.Op, strings.Join(f.Values, "|"))
		}
	}
	return []byte(b.String())
}

// Hash returns the SHA-256 hex digest of rendered bytes.
func Hash(rendered []byte) string {
	sum := sha256.Sum256(rendered)
	return hex.EncodeToString(sum[:])
}

// Exporter signs a rendered artifact with an HMAC-SHA256 key resolved
// from secrets.Provider, generalizing the teacher's Vault-backed secret
// rotation to a single signing operation instead of a cached bundle.
type Exporter struct {
	secrets secrets.Provider
}

// New builds an Exporter backed by a secrets.Provider.
func New(provider secrets.Provider) *Exporter {
	return &Exporter{secrets: provider}
}

// Export renders, hashes, and signs artifact, returning the
// domain.ExportRecord the caller persists via the audit store.
func (e *Exporter) Export(ctx context.Context, artifact *domain.BidLayerArtifact, ctxID, pilotID string) (domain.ExportRecord, error) {
	rendered := Render(*artifact)
	hash := Hash(rendered)
	artifact.ExportHash = hash

	key, err := e.secrets.Get(ctx, secrets.ExportSigningSecret)
	if err != nil {
		return domain.ExportRecord{}, err
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(rendered)
	signature := hex.EncodeToString(mac.Sum(nil))

	return domain.ExportRecord{
		ExportID:     uuid.NewString(),
		ArtifactHash: hash,
		Signature:    signature,
		IssuedAt:     time.Now().UTC(),
		CtxID:        ctxID,
		PilotID:      pilotID,
	}, nil
}

// Verify recomputes the HMAC over rendered and compares it to signature
// in constant time, returning a typed error rather than a bare bool so
// callers can distinguish "invalid" from "key unavailable".
func (e *Exporter) Verify(ctx context.Context, rendered []byte, signature string) error {
	key, err := e.secrets.Get(ctx, secrets.ExportSigningSecret)
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(rendered)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apierrors.NewBadInput("export.Verify", "signature mismatch")
	}
	return nil
}
