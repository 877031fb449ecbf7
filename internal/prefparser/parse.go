package prefparser

import (
	"context"
	"encoding/json"

	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/llm"
)

const systemPrompt = `You convert an airline pilot's free-text bid preferences into JSON.
Respond with a single JSON object with this exact shape and nothing else:
{
  "hard": {"days_off": ["YYYY-MM-DD"], "no_red_eyes": bool, "max_duty_hours_per_day": int_or_null},
  "soft_prefs": {"<name>": {"direction": "prefer"|"avoid", "target": any, "weight": 0.0-1.0}},
  "extensions": {"<unrecognized_name>": {"direction": "prefer"|"avoid", "target": any, "weight": 0.0-1.0}},
  "confidence": 0.0-1.0
}
Known soft_prefs names: pairing_length, layovers, credit, weekend_priority, international, report_time, commute_friendly, trip_length.
Anything that does not fit a known name goes under extensions, never invented as a new top-level field.
"confidence" is your own self-assessment of how completely you captured the
pilot's stated preferences; never omit it.`

// llmResponse mirrors the JSON shape requested in systemPrompt.
type llmResponse struct {
	Hard struct {
		DaysOff            []string `json:"days_off"`
		NoRedEyes          bool     `json:"no_red_eyes"`
		MaxDutyHoursPerDay *int     `json:"max_duty_hours_per_day"`
	} `json:"hard"`
	SoftPrefs  map[string]llmSoftPref `json:"soft_prefs"`
	Extensions map[string]llmSoftPref `json:"extensions"`
	Confidence *float64               `json:"confidence"`
}

type llmSoftPref struct {
	Direction string  `json:"direction"`
	Target    any     `json:"target"`
	Weight    float64 `json:"weight"`
}

// Ladder is the subset of llm.CachingLadder/llm.Ladder that Parse needs,
// so tests can substitute a fake without pulling in the real provider
// chain.
type Ladder interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (llm.Result, error)
}

// Parse always runs the offline Prefilter first, then refines it with an
// LLM call when ladder is non-nil. A nil ladder, or a ladder error,
// degrades to the prefilter's own output rather than failing the request.
// month (YYYY-MM) lets the prefilter resolve "weekends off" phrasing into
// concrete hard days_off dates.
func Parse(ctx context.Context, ladder Ladder, pilotID, airline, base, persona, month, text string) domain.PreferenceSchema {
	schema := Prefilter(text, month)
	schema.PilotID = pilotID
	schema.Airline = airline
	schema.Base = base
	schema.Source.Persona = persona

	if ladder == nil {
		return schema
	}

	result, err := ladder.Complete(ctx, systemPrompt, redactOutbound(text, pilotID))
	if err != nil {
		return schema
	}

	var parsed llmResponse
	if jsonErr := json.Unmarshal([]byte(result.Text), &parsed); jsonErr != nil {
		return schema
	}

	return merge(schema, parsed, result.Method)
}

// merge lets the LLM's output override the prefilter's baseline for
// every recognized key; unrecognized soft-pref names become Extensions
// and are also recorded as warnings on ParseSource — an unknown key must
// never reopen the schema to arbitrary top-level fields, and must never
// be silently dropped.
func merge(base domain.PreferenceSchema, parsed llmResponse, method llm.Method) domain.PreferenceSchema {
	out := base
	out.Source.ParserMethod = domain.ParserMethod(method)

	if len(parsed.Hard.DaysOff) > 0 {
		out.Hard.DaysOff = unionDates(out.Hard.DaysOff, parsed.Hard.DaysOff)
	}
	if parsed.Hard.NoRedEyes {
		out.Hard.NoRedEyes = true
	}
	if parsed.Hard.MaxDutyHoursPerDay != nil {
		out.Hard.MaxDutyHoursPerDay = parsed.Hard.MaxDutyHoursPerDay
	}

	for name, pref := range parsed.SoftPrefs {
		if !domain.KnownSoftPrefNames[name] {
			out.Source.Unrecognized = append(out.Source.Unrecognized, name)
			out.Extensions = append(out.Extensions, domain.Extension{
				Name:  name,
				Value: toSoftPref(pref),
			})
			continue
		}
		out.SoftPrefs[name] = toSoftPref(pref)
	}

	for name, pref := range parsed.Extensions {
		out.Source.Unrecognized = append(out.Source.Unrecognized, name)
		out.Extensions = append(out.Extensions, domain.Extension{
			Name:  name,
			Value: toSoftPref(pref),
		})
	}

	out.Confidence = confidenceFor(method, parsed.Confidence)
	return out
}

func toSoftPref(p llmSoftPref) domain.SoftPref {
	dir := domain.DirectionPrefer
	if p.Direction == string(domain.DirectionAvoid) {
		dir = domain.DirectionAvoid
	}
	return domain.SoftPref{Direction: dir, Target: p.Target, Weight: clamp01(p.Weight)}
}

func clamp01(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// confidenceFor prefers the LLM's own self-reported score, clamped to
// [0,1]; a response that omits it falls back to a conservative per-rung
// default rather than treating the parse as fully confident.
func confidenceFor(method llm.Method, selfReported *float64) float64 {
	if selfReported != nil {
		return clamp01(*selfReported)
	}
	switch method {
	case llm.MethodPrimary:
		return 0.9
	case llm.MethodSecondary:
		return 0.75
	default:
		return 0.5
	}
}
