package evaluation

import (
	"fmt"
	"strings"

	"github.com/dstanley/viewport/internal/capture"
	"github.com/dstanley/viewport/internal/device"
)

// DefaultTask is the evaluation task used when the caller supplies none.
const DefaultTask = "Evaluate this page's responsive design across the captured viewports. " +
	"Judge layout integrity, readability, navigation usability, and content overflow at each size, " +
	"and compare behavior across viewports."

// outputContract is the strict JSON-only instruction. It enumerates every
// field name and enumerated value the parser expects, because the parser has
// no fallback beyond best-effort brace-span scanning.
const outputContract = `Respond with a single JSON object and NO other text: no prose, no markdown, no code fences.
The object must have exactly this shape:

{
  "evaluations": [
    {
      "device": "<device name exactly as listed above>",
      "resolution": "<WIDTHxHEIGHT>",
      "status": "good" | "minor_issues" | "broken",
      "feedback": "<free-text assessment>",
      "issues": ["<specific problem>", ...],
      "suggestions": ["<specific fix>", ...],
      "accessibility_status": "good" | "issues" | "critical"
    }
  ],
  "summary": "<overall assessment across devices>",
  "priority_fixes": ["<most important fix first>", ...]
}

Include one evaluations entry per captured device, echoing the device name verbatim.
"accessibility_status" may be omitted when you did not assess accessibility.`

// BuildRequest assembles the single batched evaluation prompt covering every
// capture in the run. Pure: same inputs, same prompt.
//
// The heuristic findings block is omitted entirely when no device produced
// findings.
func BuildRequest(captures []capture.Record, registry *device.Registry, task string) string {
	if task == "" {
		task = DefaultTask
	}

	var b strings.Builder
	b.WriteString("Review the responsive design of a single web page captured across device viewports.\n\n")

	b.WriteString("Captured viewports:\n")
	for _, rec := range captures {
		label := rec.Device
		if profile, ok := registry.Lookup(rec.Device); ok {
			kind := "desktop"
			if profile.Mobile {
				kind = "mobile"
			}
			label = fmt.Sprintf("%s (%s, %s)", rec.Device, profile.Resolution(), kind)
		}
		fmt.Fprintf(&b, "- %s: screenshot at %s\n", label, rec.ImagePath)
	}

	if block := findingsBlock(captures); block != "" {
		b.WriteString("\nAutomated accessibility findings:\n")
		b.WriteString(block)
	}

	b.WriteString("\nTask: ")
	b.WriteString(task)
	b.WriteString("\n\n")
	b.WriteString(outputContract)
	return b.String()
}

// findingsBlock renders heuristic findings grouped by device, or empty when
// no device has any.
func findingsBlock(captures []capture.Record) string {
	var b strings.Builder
	for _, rec := range captures {
		if len(rec.Findings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", rec.Device)
		for _, f := range rec.Findings {
			fmt.Fprintf(&b, "- [%s] %s", f.Kind, f.Description)
			if len(f.SampleElements) > 0 {
				fmt.Fprintf(&b, " (e.g. %s)", strings.Join(f.SampleElements, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// BuildFixRequest assembles the aggregated fix prompt from a run's device
// evaluations: suggestions deduplicated across devices (exact string match,
// first-seen order) as the priority list, with every reported issue appended
// for context. Returns empty string when there is nothing actionable.
func BuildFixRequest(evals []DeviceEvaluation) string {
	suggestions := dedupe(collectSuggestions(evals))

	var issues []string
	for _, ev := range evals {
		for _, issue := range ev.Issues {
			issues = append(issues, fmt.Sprintf("[%s] %s", ev.Device, issue))
		}
	}

	if len(suggestions) == 0 && len(issues) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Fix the responsive design problems identified in this repository's front-end.\n")

	if len(suggestions) > 0 {
		b.WriteString("\nApply these fixes, in order of priority:\n")
		for i, s := range suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
	}

	if len(issues) > 0 {
		b.WriteString("\nObserved issues, per device, for context:\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	b.WriteString("\nEdit the stylesheets and templates directly. Preserve the page's visual design intent; change only what the fixes require.\n")
	return b.String()
}

func collectSuggestions(evals []DeviceEvaluation) []string {
	var out []string
	for _, ev := range evals {
		out = append(out, ev.Suggestions...)
	}
	return out
}

// dedupe removes exact duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
