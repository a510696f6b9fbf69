package work

// Risk mirrors the risk level supplied by external rule catalogs.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// Tier is the complexity class of a work item.
type Tier string

const (
	TierSimple   Tier = "simple"
	TierModerate Tier = "moderate"
	TierComplex  Tier = "complex"
)

// escalate bumps a tier by one level, saturating at complex.
func escalate(t Tier) Tier {
	switch t {
	case TierSimple:
		return TierModerate
	default:
		return TierComplex
	}
}

// Finding is one detected remediation opportunity in a file. Findings come
// from external rule catalogs; the decomposer only orders and packages
// them.
type Finding struct {
	Pattern   string `json:"pattern"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Message   string `json:"message"`
	Risk      Risk   `json:"risk"`
	Suggested string `json:"suggested,omitempty"` // expected replacement text, if the catalog supplies one
}

// Verification tells an external runner how to check a completed item.
type Verification struct {
	Kind   string `json:"kind"`   // "tests" or "lint"
	Rule   string `json:"rule"`   // pattern name the runner re-checks
	Target string `json:"target"` // file the check is scoped to
}

// WorkItem is a minimal, independently executable remediation unit derived
// from one finding. Its id is a pure function of (file, pattern, line), so
// re-decomposition on unchanged input yields the same ids.
type WorkItem struct {
	ID        string       `json:"id"`
	File      string       `json:"file"`
	StartLine int          `json:"start_line"`
	EndLine   int          `json:"end_line"`
	Pattern   string       `json:"pattern"`
	Message   string       `json:"message"`
	Risk      Risk         `json:"risk"`
	Tier      Tier         `json:"tier"`
	Unit      string       `json:"unit"`                // topological unit the file belongs to
	Enclosing string       `json:"enclosing,omitempty"` // enclosing definition, empty at module scope
	Context   string       `json:"context"`             // surrounding source lines
	Before    string       `json:"before"`              // exact text at the finding span
	After     string       `json:"after,omitempty"`     // expected replacement, if known
	Verify    Verification `json:"verify"`
}
