package domain

// DutyPeriod is one report/release window inside a pairing.
type DutyPeriod struct {
	Report            string // ISO8601 instant
	Release           string
	DutyMinutes       int
	RestBeforeMinutes int
}

// Layover is a rest period between duty periods at a station.
type Layover struct {
	Airport string
	Minutes int
}

// Pairing is a single multi-day trip as ingested from a bid package. Once
// produced it is immutable and lives in the owning BidPackage's Pairings
// slice; everywhere else in the system pairings are referenced by
// PairingID, never copied (spec.md §9 "arena + indices").
type Pairing struct {
	PairingID       string
	Days            int
	CreditMinutes   int
	BlockMinutes    int
	Routing         []string // ordered airport codes
	Dates           []string // ordered ISO dates
	IncludesWeekend bool
	HasRedEye       bool
	DutyPeriods     []DutyPeriod
	Layovers        []Layover
	Equipment       string
	Raw             []byte
}

// ReportHour returns the hour-of-day (0-23, UTC) of the first duty
// period's report time, or -1 if unavailable. Used by commuter-style soft
// rules ("trips starting after 11:00").
func (p Pairing) ReportHour() int {
	if len(p.DutyPeriods) == 0 {
		return -1
	}
	return parseHour(p.DutyPeriods[0].Report)
}

func parseHour(iso string) int {
	// Expect "...THH:MM..." layout; a malformed timestamp yields -1 rather
	// than panicking, since pairings come from untrusted ingested bytes.
	idx := -1
	for i := 0; i < len(iso); i++ {
		if iso[i] == 'T' {
			idx = i
			break
		}
	}
	if idx < 0 || idx+3 > len(iso) {
		return -1
	}
	h := iso[idx+1 : idx+3]
	v := 0
	for _, c := range h {
		if c < '0' || c > '9' {
			return -1
		}
		v = v*10 + int(c-'0')
	}
	if v < 0 || v > 23 {
		return -1
	}
	return v
}
