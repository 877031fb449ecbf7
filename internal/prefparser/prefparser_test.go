package prefparser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/llm"
)

func TestPrefilterRecognizesWeekendsOff(t *testing.T) {
	schema := Prefilter("I want weekends off and no red eyes please", "2026-08")
	require.Contains(t, schema.SoftPrefs, "weekend_priority")
	assert.True(t, schema.Hard.NoRedEyes)
	assert.Equal(t, domain.MethodRuleBased, schema.Source.ParserMethod)
}

func TestPrefilterWeekendsOffPopulatesHardDaysOffForMonth(t *testing.T) {
	schema := Prefilter("weekends off please", "2026-08")
	// August 2026 has 5 Saturdays and 5 Sundays.
	assert.Len(t, schema.Hard.DaysOff, 10)
	assert.Contains(t, schema.Hard.DaysOff, "2026-08-01")
	assert.Contains(t, schema.Hard.DaysOff, "2026-08-02")
}

func TestPrefilterIsTotalOnUnrecognizedText(t *testing.T) {
	schema := Prefilter("asdkjashdkjashd", "2026-08")
	assert.Empty(t, schema.SoftPrefs)
}

type fakeLadder struct {
	text string
	err  error
}

func (f fakeLadder) Complete(_ context.Context, _, _ string) (llm.Result, error) {
	if f.err != nil {
		return llm.Result{}, f.err
	}
	return llm.Result{Text: f.text, Method: llm.MethodPrimary}, nil
}

func TestParseFallsBackToPrefilterWhenLadderNil(t *testing.T) {
	schema := Parse(context.Background(), nil, "p1", "UAL", "ORD", "family_first", "2026-08", "weekends off")
	assert.Equal(t, domain.MethodRuleBased, schema.Source.ParserMethod)
}

func TestParseMergesLLMOverKnownVocabulary(t *testing.T) {
	ladder := fakeLadder{text: `{"hard":{"no_red_eyes":true},"soft_prefs":{"credit":{"direction":"prefer","weight":0.95}}}`}
	schema := Parse(context.Background(), ladder, "p1", "UAL", "ORD", "money_maker", "2026-08", "max credit please")
	assert.Equal(t, domain.MethodLLM, schema.Source.ParserMethod)
	assert.Equal(t, 0.95, schema.SoftPrefs["credit"].Weight)
}

func TestParseRecordsUnrecognizedAsExtensions(t *testing.T) {
	ladder := fakeLadder{text: `{"soft_prefs":{"galley_position":{"direction":"prefer","weight":0.4}}}`}
	schema := Parse(context.Background(), ladder, "p1", "UAL", "ORD", "family_first", "2026-08", "something niche")
	require.Len(t, schema.Extensions, 1)
	assert.Equal(t, "galley_position", schema.Extensions[0].Name)
	assert.Contains(t, schema.Source.Unrecognized, "galley_position")
}

func TestParseKeepsWeekendDaysOffWhenLLMAddsMore(t *testing.T) {
	ladder := fakeLadder{text: `{"hard":{"days_off":["2026-08-14"]}}`}
	schema := Parse(context.Background(), ladder, "p1", "UAL", "ORD", "family_first", "2026-08", "weekends off")
	assert.Contains(t, schema.Hard.DaysOff, "2026-08-01")
	assert.Contains(t, schema.Hard.DaysOff, "2026-08-14")
}

func TestParseUsesLLMSelfReportedConfidence(t *testing.T) {
	ladder := fakeLadder{text: `{"hard":{"no_red_eyes":true},"confidence":0.42}`}
	schema := Parse(context.Background(), ladder, "p1", "UAL", "ORD", "family_first", "2026-08", "no red eyes")
	assert.Equal(t, 0.42, schema.Confidence)
}

func TestParseFallsBackToDefaultConfidenceWhenNotReported(t *testing.T) {
	ladder := fakeLadder{text: `{"hard":{"no_red_eyes":true}}`}
	schema := Parse(context.Background(), ladder, "p1", "UAL", "ORD", "family_first", "2026-08", "no red eyes")
	assert.Equal(t, 0.9, schema.Confidence)
}

type capturingLadder struct {
	userMessage string
}

func (c *capturingLadder) Complete(_ context.Context, _, userMessage string) (llm.Result, error) {
	c.userMessage = userMessage
	return llm.Result{Text: `{}`, Method: llm.MethodPrimary}, nil
}

func TestParseRedactsEmailAndPilotIDBeforeOutboundCall(t *testing.T) {
	ladder := &capturingLadder{}
	Parse(context.Background(), ladder, "EMP12345", "UAL", "ORD", "family_first", "2026-08", "contact me at pilot@example.com, ID EMP12345")
	assert.NotContains(t, ladder.userMessage, "pilot@example.com")
	assert.NotContains(t, ladder.userMessage, "EMP12345")
}
