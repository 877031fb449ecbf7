// Package ingest turns an uploaded bid package file into a normalized
// domain.BidPackage and stores it content-addressed on disk, generalizing
// the teacher's file-and-cache conventions (common/libraries/go/iaros-core)
// to a format-agnostic parser registry instead of a single wire format.
package ingest

import (
	"bytes"
	"strings"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// Parser turns raw file bytes into pairings. Each supported SourceFormat
// has exactly one Parser registered for it; NewRegistry wires all four
// so a new dialect is one registration, not a switch
// statement scattered across the package.
type Parser interface {
	Parse(raw []byte) ([]domain.Pairing, error)
}

// sniff guesses the SourceFormat of raw: the PDF magic header wins;
// otherwise the declared filename's extension decides (.csv, .jsonl or
// .ndjson, .pdf), and anything else is treated as TXT.
func sniff(filename string, raw []byte) domain.SourceFormat {
	if bytes.HasPrefix(raw, []byte("%PDF-")) {
		return domain.FormatPDF
	}
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return domain.FormatCSV
	case strings.HasSuffix(lower, ".jsonl"), strings.HasSuffix(lower, ".ndjson"):
		return domain.FormatJSONL
	case strings.HasSuffix(lower, ".pdf"):
		return domain.FormatPDF
	default:
		return domain.FormatTXT
	}
}

// Registry dispatches raw bytes to the Parser registered for the sniffed
// format.
type Registry struct {
	parsers map[domain.SourceFormat]Parser
}

// NewRegistry builds a Registry with the four built-in dialect parsers.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[domain.SourceFormat]Parser{
			domain.FormatCSV:   csvParser{},
			domain.FormatJSONL: jsonlParser{},
			domain.FormatTXT:   txtParser{},
			domain.FormatPDF:   pdfParser{dialects: defaultPDFDialects()},
		},
	}
}

// Parse sniffs filename/raw and dispatches to the matching Parser.
func (r *Registry) Parse(filename string, raw []byte) (domain.SourceFormat, []domain.Pairing, error) {
	format := sniff(filename, raw)
	p, ok := r.parsers[format]
	if !ok {
		return format, nil, apierrors.NewBadInput("ingest.Parse", "unsupported source format")
	}
	pairings, err := p.Parse(raw)
	if err != nil {
		return format, nil, err
	}
	return format, pairings, nil
}

// SupportedFormats lists every registered dialect's name, for the
// /api/meta/parsers endpoint.
func (r *Registry) SupportedFormats() []string {
	out := make([]string, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, string(f))
	}
	return out
}
