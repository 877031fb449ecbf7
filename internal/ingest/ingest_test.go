package ingest

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return NewService(store)
}

func TestCSVParserProducesPairings(t *testing.T) {
	csvBody := "pairing_id,days,credit_minutes,block_minutes,routing,dates,includes_weekend,has_red_eye,equipment\n" +
		"P001,3,1200,900,ORD|DEN|ORD,2026-08-01|2026-08-02|2026-08-03,true,false,738\n"
	pairings, err := (csvParser{}).Parse([]byte(csvBody))
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Equal(t, "P001", pairings[0].PairingID)
	assert.Equal(t, 1200, pairings[0].CreditMinutes)
	assert.True(t, pairings[0].IncludesWeekend)
}

func TestJSONLParserProducesPairings(t *testing.T) {
	body := `{"pairing_id":"P002","days":2,"credit_minutes":800,"block_minutes":700,"has_red_eye":true}` + "\n"
	pairings, err := (jsonlParser{}).Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.True(t, pairings[0].HasRedEye)
}

func TestJSONLParserRejectsMissingID(t *testing.T) {
	body := `{"days":2}` + "\n"
	_, err := (jsonlParser{}).Parse([]byte(body))
	require.Error(t, err)
}

func TestSniffDetectsFormats(t *testing.T) {
	assert.Equal(t, domain.FormatCSV, sniff("bid.csv", []byte("a,b")))
	assert.Equal(t, domain.FormatJSONL, sniff("bid.jsonl", []byte("{}")))
	assert.Equal(t, domain.FormatPDF, sniff("bid.bin", []byte("%PDF-1.4")))
	assert.Equal(t, domain.FormatTXT, sniff("bid.weird", []byte("x")))
}

func TestIngestIsContentAddressedAndIdempotent(t *testing.T) {
	svc := newTestService(t)
	raw := []byte("pairing_id,days,credit_minutes,block_minutes\nP001,2,600,500\n")

	pkg1, _, err := svc.Ingest("a.csv", "UAL", "2026-08", "ORD", "738", domain.SeatFirstOfficer, raw)
	require.NoError(t, err)
	pkg2, _, err := svc.Ingest("a.csv", "UAL", "2026-08", "ORD", "738", domain.SeatFirstOfficer, raw)
	require.NoError(t, err)

	assert.Equal(t, pkg1.PackageID, pkg2.PackageID)
	assert.Equal(t, Hash(raw), pkg1.PackageID)
}

func TestIngestDeduplicatesConcurrentUploads(t *testing.T) {
	svc := newTestService(t)
	raw := []byte("pairing_id,days,credit_minutes,block_minutes\nP001,2,600,500\n")

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pkg, _, err := svc.Ingest("a.csv", "UAL", "2026-08", "ORD", "738", domain.SeatFirstOfficer, raw)
			require.NoError(t, err)
			ids[i] = pkg.PackageID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "packages")
	store, err := NewStore(dir)
	require.NoError(t, err)

	pkg := &domain.BidPackage{PackageID: "abc", Airline: "UAL"}
	require.NoError(t, store.Save("abc", []byte("raw"), pkg))
	assert.True(t, store.Exists("abc"))

	loaded, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "UAL", loaded.Airline)
}
