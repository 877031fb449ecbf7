package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
)

type fakeProvider struct {
	value string
}

func (f fakeProvider) Get(_ context.Context, _ string) (string, error) {
	return f.value, nil
}

func sampleArtifact() domain.BidLayerArtifact {
	return domain.BidLayerArtifact{
		Airline: "UAL",
		Format:  domain.FormatPBS2,
		Month:   "2026-08",
		Layers: []domain.Layer{
			{N: 1, Prefer: domain.PreferYes, Filters: []domain.Filter{
				{Type: "pairing_id", Op: domain.OpIn, Values: []string{"A", "B"}},
			}},
		},
	}
}

func TestRenderIsByteStableAcrossCalls(t *testing.T) {
	artifact := sampleArtifact()
	assert.Equal(t, Render(artifact), Render(artifact))
}

func TestHashChangesWhenArtifactChanges(t *testing.T) {
	a := sampleArtifact()
	b := sampleArtifact()
	b.Layers[0].Filters[0].Values = []string{"A"}

	assert.NotEqual(t, Hash(Render(a)), Hash(Render(b)))
}

func TestExportProducesVerifiableSignature(t *testing.T) {
	e := New(fakeProvider{value: "top-secret"})
	artifact := sampleArtifact()

	record, err := e.Export(context.Background(), &artifact, "ctx-1", "pilot-1")
	require.NoError(t, err)
	assert.NotEmpty(t, record.Signature)
	assert.Equal(t, artifact.ExportHash, record.ArtifactHash)

	err = e.Verify(context.Background(), Render(artifact), record.Signature)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	e := New(fakeProvider{value: "top-secret"})
	artifact := sampleArtifact()

	record, err := e.Export(context.Background(), &artifact, "ctx-1", "pilot-1")
	require.NoError(t, err)

	err = e.Verify(context.Background(), Render(artifact), record.Signature+"00")
	assert.Error(t, err)
}
