package domain

import "time"

// SourceFormat is the original upload format of a bid package.
type SourceFormat string

const (
	FormatPDF   SourceFormat = "pdf"
	FormatCSV   SourceFormat = "csv"
	FormatJSONL SourceFormat = "jsonl"
	FormatTXT   SourceFormat = "txt"
)

// BidPackage is the normalized, content-addressed form of an uploaded
// bid package file.
type BidPackage struct {
	PackageID    string // SHA-256 of raw bytes
	Airline      string
	Month        string
	Base         string
	Fleet        string
	Seat         Seat
	UploadedAt   time.Time
	SourceFormat SourceFormat
	Pairings     []Pairing
}

// PairingByID does a linear scan; bid packages are small enough (a few
// thousand pairings at most) that an index map is not worth maintaining
// across the package's read-only lifetime for most call sites, but hot
// paths (the optimizer) build their own index once per request instead
// of calling this repeatedly.
func (b *BidPackage) PairingByID(id string) (Pairing, bool) {
	for _, p := range b.Pairings {
		if p.PairingID == id {
			return p, true
		}
	}
	return Pairing{}, false
}

// Summary is the response to a successful Ingest call.
type Summary struct {
	Trips       int
	Legs        int
	DateSpan    [2]string
	CreditTotal int
}
