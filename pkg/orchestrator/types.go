package orchestrator

import "deepresearch-be/internal/entity"

// Phase name constants — the exact sequence each mode's Phase rows and
// progress events must use.
const (
	PhaseQuickSynthesis      = "quick_synthesis"
	PhaseSourceDiscovery     = "source_discovery"
	PhaseStructuredSynthesis = "structured_synthesis"
	PhaseQueryAnalysis       = "query_analysis"
	PhaseContentExtraction   = "content_extraction"
	PhaseCrossValidation     = "cross_validation"
	PhaseCitationLinking     = "citation_linking"
)

// ProgressFunc is how a mode implementation reports a phase boundary.
// It is called synchronously and must not block the pipeline; deep.go's
// caller is responsible for making delivery non-blocking (the event bus
// already is).
type ProgressFunc func(phase string, progress int, message string, data interface{})

// Result is what every mode implementation returns on success: the
// finished report content, its citations, accumulated token usage, and
// the Phase rows to persist in order.
type Result struct {
	Report     string
	Citations  []entity.Citation
	TokensIn   int
	TokensOut  int
	PhaseRows  []PhaseRow
}

// PhaseRow is a single phase's telemetry, ready to append via the
// persistence adapter.
type PhaseRow struct {
	Name       string
	DurationMs int
	TokensUsed int
	Metadata   map[string]interface{}
}

func (r *Result) totalTokens() int {
	return r.TokensIn + r.TokensOut
}
