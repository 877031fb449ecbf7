package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// jsonlParser expects one JSON object per line matching domain.Pairing's
// field names in snake_case; a blank line is skipped rather than treated
// as an error, since hand-edited JSONL files often carry trailing newlines.
type jsonlParser struct{}

type jsonlRecord struct {
	PairingID       string               `json:"pairing_id"`
	Days            int                  `json:"days"`
	CreditMinutes   int                  `json:"credit_minutes"`
	BlockMinutes    int                  `json:"block_minutes"`
	Routing         []string             `json:"routing"`
	Dates           []string             `json:"dates"`
	IncludesWeekend bool                 `json:"includes_weekend"`
	HasRedEye       bool                 `json:"has_red_eye"`
	Equipment       string               `json:"equipment"`
	DutyPeriods     []jsonlDutyPeriod    `json:"duty_periods"`
	Layovers        []jsonlLayover       `json:"layovers"`
}

type jsonlDutyPeriod struct {
	Report            string `json:"report"`
	Release           string `json:"release"`
	DutyMinutes       int    `json:"duty_minutes"`
	RestBeforeMinutes int    `json:"rest_before_minutes"`
}

type jsonlLayover struct {
	Airport string `json:"airport"`
	Minutes int    `json:"minutes"`
}

func (jsonlParser) Parse(raw []byte) ([]domain.Pairing, error) {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pairings []domain.Pairing
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, apierrors.NewBadInput("ingest.jsonlParser", "malformed JSON on line")
		}
		if rec.PairingID == "" {
			return nil, apierrors.NewBadInput("ingest.jsonlParser", "pairing_id required on every line")
		}
		pairings = append(pairings, jsonlToPairing(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewBadInput("ingest.jsonlParser", "scan failed: "+err.Error())
	}
	return pairings, nil
}

func jsonlToPairing(rec jsonlRecord) domain.Pairing {
	duty := make([]domain.DutyPeriod, len(rec.DutyPeriods))
	for i, d := range rec.DutyPeriods {
		duty[i] = domain.DutyPeriod{
			Report:            d.Report,
			Release:           d.Release,
			DutyMinutes:       d.DutyMinutes,
			RestBeforeMinutes: d.RestBeforeMinutes,
		}
	}
	layovers := make([]domain.Layover, len(rec.Layovers))
	for i, l := range rec.Layovers {
		layovers[i] = domain.Layover{Airport: l.Airport, Minutes: l.Minutes}
	}
	return domain.Pairing{
		PairingID:       rec.PairingID,
		Days:            rec.Days,
		CreditMinutes:   rec.CreditMinutes,
		BlockMinutes:    rec.BlockMinutes,
		Routing:         rec.Routing,
		Dates:           rec.Dates,
		IncludesWeekend: rec.IncludesWeekend,
		HasRedEye:       rec.HasRedEye,
		DutyPeriods:     duty,
		Layovers:        layovers,
		Equipment:       rec.Equipment,
	}
}
