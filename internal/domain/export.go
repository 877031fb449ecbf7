package domain

import "time"

// ExportRecord is the signed, auditable result of rendering a
// BidLayerArtifact to an airline's PBS text dialect.
type ExportRecord struct {
	ExportID     string
	ArtifactHash string
	Signature    string
	IssuedAt     time.Time
	CtxID        string
	PilotID      string // pseudonymized if policy requires
}

// RequestTrace is the shape of an ephemeral per-request diagnostic record
// (spec.md non-goal: no storing outcomes over time); no package in this
// repository creates or populates one.
type RequestTrace struct {
	RequestID     string
	ReceivedAt    time.Time
	Deadline      time.Time
	StageTimings  map[string]time.Duration
	Warnings      []string
}

// PersonaProfile is a named profile of soft-weight multipliers.
type PersonaProfile struct {
	Name                  string
	SoftWeightMultipliers map[string]float64
	Description           string
}
