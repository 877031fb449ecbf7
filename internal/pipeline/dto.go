package pipeline

import "github.com/thehillman215/vectorbid/internal/domain"

// parsePreferencesRequest mirrors spec.md §6's
// `{preferences_text, persona?, context?}` body.
type parsePreferencesRequest struct {
	PreferencesText string `json:"preferences_text"`
	Persona         string `json:"persona"`
	PilotID         string `json:"pilot_id"`
	Airline         string `json:"airline"`
	Base            string `json:"base"`
	Month           string `json:"month"`
}

type parsePreferencesResponse struct {
	PreferenceSchema domain.PreferenceSchema `json:"preference_schema"`
	Confidence       float64                 `json:"confidence"`
	Method           domain.ParserMethod     `json:"method"`
	Unrecognized     []string                `json:"unrecognized,omitempty"`
}

// validateConstraintsRequest mirrors `{preference_schema, context}`. The
// bid package to validate hard rules against is identified by
// package_id so the orchestrator can run the Context Enricher stage
// (§4.4) rather than requiring the caller to assemble a full
// FeatureBundle client-side.
type validateConstraintsRequest struct {
	PreferenceSchema domain.PreferenceSchema `json:"preference_schema"`
	PackageID        string                  `json:"package_id"`
	Month            string                  `json:"month"`
}

type validateConstraintsResponse struct {
	OK              bool               `json:"ok"`
	HardViolations  []domain.Violation `json:"hard_violations"`
	Warnings        []string           `json:"warnings"`
}

// optimizeRequest mirrors `{feature_bundle, K?}`; feature_bundle is
// expressed as its constituent preference_schema + package_id rather
// than a pre-assembled domain.FeatureBundle, since Context/RulePack can
// only be resolved server-side (see validateConstraintsRequest).
type optimizeRequest struct {
	PreferenceSchema domain.PreferenceSchema `json:"preference_schema"`
	PackageID        string                  `json:"package_id"`
	Month            string                  `json:"month"`
	Persona          string                  `json:"persona"`
	K                int                     `json:"k"`
}

type optimizeResponse struct {
	Candidates      []domain.CandidateSchedule `json:"candidates"`
	OptimizerVersion string                    `json:"optimizer_version"`
}

type retuneRequest struct {
	Candidates   []domain.CandidateSchedule `json:"candidates"`
	WeightDeltas map[string]float64         `json:"weight_deltas"`
	Persona      string                     `json:"persona"`
}

type retuneResponse struct {
	Candidates []domain.CandidateSchedule `json:"candidates"`
}

type strategyRequest struct {
	PreferenceSchema domain.PreferenceSchema    `json:"preference_schema"`
	PackageID        string                     `json:"package_id"`
	Candidates       []domain.CandidateSchedule `json:"candidates"`
}

type strategyResponse struct {
	Directives domain.StrategyDirectives `json:"directives"`
}

type generateLayersRequest struct {
	Directives domain.StrategyDirectives `json:"directives"`
	PackageID  string                    `json:"package_id"`
	Airline    string                    `json:"airline"`
	Month      string                    `json:"month"`
}

type generateLayersResponse struct {
	Artifact domain.BidLayerArtifact `json:"artifact"`
}

type lintRequest struct {
	Artifact domain.BidLayerArtifact `json:"artifact"`
}

type lintResponse struct {
	Lint domain.LintReport `json:"lint"`
}

type exportRequest struct {
	Artifact domain.BidLayerArtifact `json:"artifact"`
	CtxID    string                  `json:"ctx_id"`
	PilotID  string                  `json:"pilot_id"`
}

type exportResponse struct {
	ExportID  string `json:"export_id"`
	Bytes     string `json:"bytes"`
	ExportHash string `json:"export_hash"`
	Signature string `json:"signature"`
	IssuedAt  string `json:"issued_at"`
}

type ingestResponse struct {
	PackageID string         `json:"package_id"`
	Summary   domain.Summary `json:"summary"`
}

type metaParsersResponse struct {
	SupportedFormats []string `json:"supported_formats"`
	RequiredFields   []string `json:"required_fields"`
}

type rulePackSummary struct {
	Airline string `json:"airline"`
	Month   string `json:"month"`
	Version string `json:"version"`
}
