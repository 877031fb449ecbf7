// Package prefparser turns a pilot's free-text preference request into a
// domain.PreferenceSchema. A cheap rule-based prefilter always runs first
// and supplies the baseline that the LLM ladder refines; if the ladder is
// unavailable the prefilter's output is returned as-is with
// ParserMethod=rule_based.
package prefparser

import (
	"regexp"
	"strings"
	"time"

	"github.com/thehillman215/vectorbid/internal/domain"
)

var weekendPhrase = regexp.MustCompile(`(?i)weekends?\s+off`)
var noRedEyePhrase = regexp.MustCompile(`(?i)no\s+red[\s-]?eyes?`)
var morningPhrase = regexp.MustCompile(`(?i)morning\s+(departures?|report)`)
var maxDutyPhrase = regexp.MustCompile(`(?i)(?:max(?:imum)?|no more than)\s+(\d{1,2})\s*(?:hour|hr)s?\s+(?:duty|day)`)
var creditMaxPhrase = regexp.MustCompile(`(?i)(?:max(?:imize)?|most)\s+credit`)
var shortTripsPhrase = regexp.MustCompile(`(?i)short\s+trips?`)
var longTripsPhrase = regexp.MustCompile(`(?i)long\s+trips?`)
var commuterPhrase = regexp.MustCompile(`(?i)commut(?:e|er|ing)[\s-]?friendly`)

// Prefilter tokenizes a small set of known phrasings into a baseline
// HardConstraints + SoftPrefs map, entirely offline. It never errors: an
// unrecognized sentence simply contributes nothing, since this is only
// ever a floor for whatever the LLM (or a human operator) refines. month
// (YYYY-MM) resolves "weekends off" into the hard days_off dates it
// actually names; an empty or malformed month leaves days_off computation
// to the LLM refinement step.
func Prefilter(text, month string) domain.PreferenceSchema {
	schema := domain.PreferenceSchema{
		SoftPrefs: make(map[string]domain.SoftPref),
		Source: domain.ParseSource{
			Text:         text,
			ParserMethod: domain.MethodRuleBased,
		},
	}

	if weekendPhrase.MatchString(text) {
		schema.SoftPrefs["weekend_priority"] = domain.SoftPref{
			Direction: domain.DirectionPrefer,
			Weight:    0.8,
		}
		schema.Hard.DaysOff = unionDates(schema.Hard.DaysOff, weekendDatesInMonth(month))
	}
	if noRedEyePhrase.MatchString(text) {
		schema.Hard.NoRedEyes = true
	}
	if morningPhrase.MatchString(text) {
		schema.SoftPrefs["report_time"] = domain.SoftPref{
			Direction: domain.DirectionPrefer,
			Target:    "morning",
			Weight:    0.6,
		}
	}
	if commuterPhrase.MatchString(text) {
		schema.SoftPrefs["commute_friendly"] = domain.SoftPref{
			Direction: domain.DirectionPrefer,
			Weight:    0.7,
		}
	}
	if creditMaxPhrase.MatchString(text) {
		schema.SoftPrefs["credit"] = domain.SoftPref{
			Direction: domain.DirectionPrefer,
			Weight:    0.9,
		}
	}
	if shortTripsPhrase.MatchString(text) {
		schema.SoftPrefs["trip_length"] = domain.SoftPref{
			Direction: domain.DirectionPrefer,
			Target:    "short",
			Weight:    0.5,
		}
	} else if longTripsPhrase.MatchString(text) {
		schema.SoftPrefs["trip_length"] = domain.SoftPref{
			Direction: domain.DirectionPrefer,
			Target:    "long",
			Weight:    0.5,
		}
	}
	if m := maxDutyPhrase.FindStringSubmatch(text); m != nil {
		if hours := atoiSafe(m[1]); hours > 0 {
			schema.Hard.MaxDutyHoursPerDay = &hours
		}
	}

	return schema
}

// weekendDatesInMonth returns the ISO (YYYY-MM-DD) dates of every Saturday
// and Sunday in month (YYYY-MM), or nil if month does not parse.
func weekendDatesInMonth(month string) []string {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil
	}
	var dates []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			dates = append(dates, d.Format("2006-01-02"))
		}
	}
	return dates
}

// unionDates merges b into a, deduplicating, for combining the prefilter's
// computed weekend dates with whatever the LLM refinement adds later.
func unionDates(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, d := range a {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, d := range b {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func atoiSafe(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
