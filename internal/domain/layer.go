package domain

// PreferDirective is the polarity of a PBS layer.
type PreferDirective string

const (
	PreferYes PreferDirective = "YES"
	PreferNo  PreferDirective = "NO"
)

// FilterOp is a comparison/membership operator available to a layer filter.
type FilterOp string

const (
	OpEq       FilterOp = "="
	OpNeq      FilterOp = "!="
	OpLt       FilterOp = "<"
	OpLte      FilterOp = "<="
	OpGt       FilterOp = ">"
	OpGte      FilterOp = ">="
	OpIn       FilterOp = "in"
	OpNotIn    FilterOp = "not_in"
	OpBetween  FilterOp = "between"
)

// Filter is one predicate inside a layer's filter set.
type Filter struct {
	Type   string
	Op     FilterOp
	Values []string
}

// Layer is one row of a PBS bid: a filter set plus a prefer/avoid
// directive, evaluated in order by the airline's PBS engine.
type Layer struct {
	N                     int
	Filters               []Filter
	Prefer                PreferDirective
	EstimatedAwardProb    float64
}

// LintKind enumerates the distinct lint finding categories (spec.md §4.7).
type LintKind string

const (
	LintShadow          LintKind = "SHADOW"
	LintContradiction   LintKind = "CONTRADICTION"
	LintRedundantFilter LintKind = "REDUNDANT_FILTER"
	LintAirlineSpecific LintKind = "AIRLINE_SPECIFIC"
	LintEmptyLayer      LintKind = "EMPTY_LAYER"
)

// LintFinding is a single annotation produced by the Linter.
type LintFinding struct {
	Kind        LintKind
	LayerIndexes []int
	Detail      string
}

// LintReport groups findings by severity bucket.
type LintReport struct {
	Errors   []LintFinding
	Warnings []LintFinding
	Info     []LintFinding
}

// ArtifactFormat names the target PBS dialect.
type ArtifactFormat string

const FormatPBS2 ArtifactFormat = "PBS2"

// BidLayerArtifact is the ordered sequence of layers produced by the
// Strategy + Layer Generator stage, annotated by the Linter.
type BidLayerArtifact struct {
	Airline    string
	Format     ArtifactFormat
	Month      string
	Layers     []Layer
	Lint       LintReport
	ExportHash string
}
