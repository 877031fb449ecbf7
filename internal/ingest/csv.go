package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// csvParser expects the header row:
// pairing_id,days,credit_minutes,block_minutes,routing,dates,includes_weekend,has_red_eye,equipment
type csvParser struct{}

func (csvParser) Parse(raw []byte) ([]domain.Pairing, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, apierrors.NewBadInput("ingest.csvParser", "empty or unreadable CSV")
	}
	col := indexHeader(header)
	required := []string{"pairing_id", "days", "credit_minutes", "block_minutes"}
	for _, c := range required {
		if _, ok := col[c]; !ok {
			return nil, apierrors.NewBadInput("ingest.csvParser", "missing required column: "+c)
		}
	}

	var pairings []domain.Pairing
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewBadInput("ingest.csvParser", "malformed CSV row: "+err.Error())
		}
		p, err := recordToPairing(rec, col)
		if err != nil {
			return nil, err
		}
		pairings = append(pairings, p)
	}
	return pairings, nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

func recordToPairing(rec []string, col map[string]int) (domain.Pairing, error) {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}
	days, err := strconv.Atoi(get("days"))
	if err != nil {
		return domain.Pairing{}, apierrors.NewBadInput("ingest.csvParser", "invalid days value")
	}
	credit, err := strconv.Atoi(get("credit_minutes"))
	if err != nil {
		return domain.Pairing{}, apierrors.NewBadInput("ingest.csvParser", "invalid credit_minutes value")
	}
	block, err := strconv.Atoi(get("block_minutes"))
	if err != nil {
		return domain.Pairing{}, apierrors.NewBadInput("ingest.csvParser", "invalid block_minutes value")
	}
	return domain.Pairing{
		PairingID:       get("pairing_id"),
		Days:            days,
		CreditMinutes:   credit,
		BlockMinutes:    block,
		Routing:         splitList(get("routing")),
		Dates:           splitList(get("dates")),
		IncludesWeekend: get("includes_weekend") == "true",
		HasRedEye:       get("has_red_eye") == "true",
		Equipment:       get("equipment"),
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}
