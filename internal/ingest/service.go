package ingest

import (
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// Service is the Context Ingestion Layer's entry point: it sniffs,
// parses, content-addresses, and stores one uploaded bid package,
// deduplicating concurrent uploads of identical bytes so two pilots
// uploading the same monthly export at once do a single parse pass.
type Service struct {
	registry *Registry
	store    *Store
	group    singleflight.Group
}

// NewService wires a Registry and Store into one ingestion entry point.
func NewService(store *Store) *Service {
	return &Service{registry: NewRegistry(), store: store}
}

// Ingest parses raw bytes into a domain.BidPackage and stores it, unless
// a package with the same content hash already exists, in which case the
// existing record is returned unchanged (content-addressed idempotence).
// Concurrent calls with identical raw bytes share one parse via
// singleflight, keyed on the content hash itself.
func (s *Service) Ingest(filename, airline, month, base, fleet string, seat domain.Seat, raw []byte) (*domain.BidPackage, domain.Summary, error) {
	hash := Hash(raw)

	result, err, _ := s.group.Do(hash, func() (interface{}, error) {
		if s.store.Exists(hash) {
			return s.store.Load(hash)
		}

		format, pairings, parseErr := s.registry.Parse(filename, raw)
		if parseErr != nil {
			return nil, parseErr
		}
		pkg := &domain.BidPackage{
			PackageID:    hash,
			Airline:      airline,
			Month:        month,
			Base:         base,
			Fleet:        fleet,
			Seat:         seat,
			UploadedAt:   time.Now().UTC(),
			SourceFormat: format,
			Pairings:     pairings,
		}
		if saveErr := s.store.Save(hash, raw, pkg); saveErr != nil {
			return nil, saveErr
		}
		return pkg, nil
	})
	if err != nil {
		if pe, ok := apierrors.As(err); ok {
			return nil, domain.Summary{}, pe
		}
		return nil, domain.Summary{}, apierrors.NewInternal("ingest.Ingest", "ingest failed", err)
	}

	pkg := result.(*domain.BidPackage)
	return pkg, summarize(pkg), nil
}

// Lookup returns a previously ingested package by content hash.
func (s *Service) Lookup(hash string) (*domain.BidPackage, error) {
	return s.store.Load(hash)
}

// SupportedFormats reports the dialects this service can parse, for the
// /api/meta/parsers endpoint.
func (s *Service) SupportedFormats() []string {
	return s.registry.SupportedFormats()
}

func summarize(pkg *domain.BidPackage) domain.Summary {
	var sum domain.Summary
	sum.Trips = len(pkg.Pairings)
	var first, last string
	for _, p := range pkg.Pairings {
		sum.Legs += len(p.Routing)
		sum.CreditTotal += p.CreditMinutes
		for _, d := range p.Dates {
			if first == "" || d < first {
				first = d
			}
			if last == "" || d > last {
				last = d
			}
		}
	}
	sum.DateSpan = [2]string{first, last}
	return sum
}
