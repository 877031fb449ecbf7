package ingest

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// PDFDialect extracts pairings from one airline's PBS text export layout.
// Detect reports whether text looks like this dialect's output at all,
// so pdfParser can try every registered dialect without an explicit
// airline hint from the caller.
type PDFDialect interface {
	Name() string
	Detect(text string) bool
	Extract(text string) ([]domain.Pairing, error)
}

// defaultPDFDialects returns the built-in dialect set. United's PBS
// export is the only one VectorBid must support at launch; additional
// carriers register here as their export layouts are onboarded.
func defaultPDFDialects() []PDFDialect {
	return []PDFDialect{unitedDialect{}}
}

type pdfParser struct {
	dialects []PDFDialect
}

func (p pdfParser) Parse(raw []byte) ([]domain.Pairing, error) {
	text, err := extractText(raw)
	if err != nil {
		return nil, err
	}
	for _, d := range p.dialects {
		if d.Detect(text) {
			return d.Extract(text)
		}
	}
	return nil, apierrors.NewBadInput("ingest.pdfParser", "no registered PDF dialect recognized this file")
}

func extractText(raw []byte) (string, error) {
	reader := bytes.NewReader(raw)
	r, err := pdf.NewReader(reader, int64(len(raw)))
	if err != nil {
		return "", apierrors.NewBadInput("ingest.pdfParser", "unreadable PDF: "+err.Error())
	}

	var b strings.Builder
	totalPage := r.NumPage()
	for i := 1; i <= totalPage; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil && err != io.EOF {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// unitedDialect parses United's PBS 2.0 monthly bid-package export: one
// pairing block per line, "UAL" marker on the header page, fields
// separated by whitespace.
type unitedDialect struct{}

func (unitedDialect) Name() string { return "UAL" }

func (unitedDialect) Detect(text string) bool {
	return strings.Contains(text, "UAL") || strings.Contains(text, "UNITED AIRLINES")
}

func (unitedDialect) Extract(text string) ([]domain.Pairing, error) {
	var pairings []domain.Pairing
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !looksLikePairingLine(line) {
			continue
		}
		fields := strings.Fields(line)
		days, err1 := strconv.Atoi(fields[1])
		credit, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			continue
		}
		p := domain.Pairing{
			PairingID:     fields[0],
			Days:          days,
			CreditMinutes: credit,
		}
		if len(fields) > 3 {
			p.Equipment = fields[3]
		}
		pairings = append(pairings, p)
	}
	if len(pairings) == 0 {
		return nil, apierrors.NewBadInput("ingest.unitedDialect", "no pairing lines recognized in United export")
	}
	return pairings, nil
}

func looksLikePairingLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return false
	}
	return len(fields[0]) >= 4 && fields[0][0] >= 'A' && fields[0][0] <= 'Z'
}
