// Package evaluation holds the typed evaluation model, the prompt that
// requests it, and the tolerant parser that extracts it from agent output.
//
// The prompt contract and the parser are coupled: the strict JSON-only
// instruction in BuildRequest is what makes the naive brace-span extraction
// in Parse viable. Change one and the other must be re-derived.
package evaluation

// Status is the agent's per-device verdict. The three values are an
// unordered tri-state, not a severity scale.
type Status string

const (
	StatusGood        Status = "good"
	StatusMinorIssues Status = "minor_issues"
	StatusBroken      Status = "broken"
)

// AccessibilityStatus is the agent's optional accessibility verdict.
type AccessibilityStatus string

const (
	AccessGood     AccessibilityStatus = "good"
	AccessIssues   AccessibilityStatus = "issues"
	AccessCritical AccessibilityStatus = "critical"
)

// DeviceEvaluation is the agent's qualitative judgment for one device,
// produced exclusively by parsing agent output. A device with no evaluation
// is a valid degraded state, not an error.
type DeviceEvaluation struct {
	Device              string              `json:"device"`
	Resolution          string              `json:"resolution"`
	Status              Status              `json:"status"`
	Feedback            string              `json:"feedback"`
	Issues              []string            `json:"issues"`
	Suggestions         []string            `json:"suggestions"`
	AccessibilityStatus AccessibilityStatus `json:"accessibility_status,omitempty"`
}

// Payload is the full response object the prompt contract requires.
type Payload struct {
	Evaluations   []DeviceEvaluation `json:"evaluations"`
	Summary       string             `json:"summary"`
	PriorityFixes []string           `json:"priority_fixes"`
}
