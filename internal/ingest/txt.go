package ingest

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// txtParser handles a plain-text fixed-field export: one pairing per
// line, space-padded columns, matching the layout a PBS text dump is
// commonly copy-pasted into. It is intentionally the most permissive
// dialect, used as the last-resort fallback when sniff cannot identify
// anything more specific.
//
//	PAIRING_ID  DAYS  CREDIT  BLOCK  WEEKEND  REDEYE  EQUIP
type txtParser struct{}

func (txtParser) Parse(raw []byte) ([]domain.Pairing, error) {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	var pairings []domain.Pairing
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, apierrors.NewBadInput("ingest.txtParser", "line has fewer than 4 fields: "+line)
		}
		days, err1 := strconv.Atoi(fields[1])
		credit, err2 := strconv.Atoi(fields[2])
		block, err3 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, apierrors.NewBadInput("ingest.txtParser", "non-numeric field in line: "+line)
		}
		p := domain.Pairing{
			PairingID:     fields[0],
			Days:          days,
			CreditMinutes: credit,
			BlockMinutes:  block,
		}
		if len(fields) > 4 {
			p.IncludesWeekend = strings.EqualFold(fields[4], "Y")
		}
		if len(fields) > 5 {
			p.HasRedEye = strings.EqualFold(fields[5], "Y")
		}
		if len(fields) > 6 {
			p.Equipment = fields[6]
		}
		pairings = append(pairings, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewBadInput("ingest.txtParser", "scan failed: "+err.Error())
	}
	return pairings, nil
}
