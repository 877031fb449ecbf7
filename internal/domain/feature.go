package domain

// FeatureBundle is the fused output of the Context Enricher: everything
// the optimizer needs for one request, assembled from parallel loads of
// the pilot's context, the active rule pack, and the bid package. Legacy
// indicates the rule pack could not be loaded and the optimizer must run
// in legacy mode (fixed FAR117 baseline checks only, no soft rules; the
// pilot's HardConstraints are not checked).
type FeatureBundle struct {
	Context    ContextSnapshot
	Preference PreferenceSchema
	Package    *BidPackage
	RulePack   *RulePack
	Legacy     bool
	Warnings   []string
}
