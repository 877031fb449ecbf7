package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/ingest"
	"github.com/thehillman215/vectorbid/internal/ruleengine"
)

type fakeContextLoader struct {
	snapshot domain.ContextSnapshot
	err      error
}

func (f fakeContextLoader) Load(_ context.Context, _, _ string) (domain.ContextSnapshot, error) {
	return f.snapshot, f.err
}

func TestEnrichDegradesToLegacyWhenRulePackMissing(t *testing.T) {
	store, err := ingest.NewStore(t.TempDir())
	require.NoError(t, err)
	svc := ingest.NewService(store)
	_, _, err = svc.Ingest("a.csv", "UAL", "2026-08", "ORD", "738", domain.SeatFirstOfficer,
		[]byte("pairing_id,days,credit_minutes,block_minutes\nP1,2,600,500\n"))
	require.NoError(t, err)

	cache, err := ruleengine.NewCache(t.TempDir(), 4)
	require.NoError(t, err)

	e := New(fakeContextLoader{snapshot: domain.ContextSnapshot{PilotID: "p1"}}, cache, svc)

	pref := domain.PreferenceSchema{PilotID: "p1", Airline: "UAL"}
	packageID := ingest.Hash([]byte("pairing_id,days,credit_minutes,block_minutes\nP1,2,600,500\n"))

	bundle, err := e.Enrich(context.Background(), pref, "2026-08", packageID)
	require.NoError(t, err)
	assert.True(t, bundle.Legacy)
	assert.NotEmpty(t, bundle.Warnings)
}

func TestEnrichFailsWhenPackageMissing(t *testing.T) {
	store, err := ingest.NewStore(t.TempDir())
	require.NoError(t, err)
	svc := ingest.NewService(store)
	cache, err := ruleengine.NewCache(t.TempDir(), 4)
	require.NoError(t, err)

	e := New(fakeContextLoader{snapshot: domain.ContextSnapshot{PilotID: "p1"}}, cache, svc)
	_, err = e.Enrich(context.Background(), domain.PreferenceSchema{PilotID: "p1", Airline: "UAL"}, "2026-08", "doesnotexist")
	assert.Error(t, err)
}
