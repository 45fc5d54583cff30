// Package report renders run and comparison results as Markdown and writes
// the artifact set for a run directory.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dstanley/viewport/internal/comparison"
	"github.com/dstanley/viewport/internal/evaluation"
	"github.com/dstanley/viewport/internal/runner"
)

const timestampLayout = "2006-01-02 15:04:05"

// statusLabel maps a status to its display marker. Unrecognized values fall
// through to the unknown marker rather than breaking the report.
func statusLabel(status evaluation.Status) string {
	switch status {
	case evaluation.StatusGood:
		return "✅ good"
	case evaluation.StatusMinorIssues:
		return "⚠️ minor issues"
	case evaluation.StatusBroken:
		return "❌ broken"
	default:
		return "❓ unknown"
	}
}

func accessLabel(status evaluation.AccessibilityStatus) string {
	switch status {
	case evaluation.AccessGood:
		return "✅ good"
	case evaluation.AccessIssues:
		return "⚠️ issues"
	case evaluation.AccessCritical:
		return "❌ critical"
	default:
		return "❓ not assessed"
	}
}

// RenderRun renders one run as Markdown. Pure: no filesystem access, no
// clock reads.
func RenderRun(result *runner.RunResult) string {
	var b strings.Builder

	b.WriteString("# Responsive Design Report\n\n")
	fmt.Fprintf(&b, "**URL:** %s\n\n", result.URL)
	fmt.Fprintf(&b, "**Run:** %s\n\n", result.Timestamp.Format(timestampLayout))

	if result.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", result.Summary)
	}

	b.WriteString("## Devices\n\n")
	if len(result.Captures) == 0 {
		b.WriteString("No device captured successfully.\n\n")
	} else {
		b.WriteString("| Device | Status | Accessibility |\n")
		b.WriteString("|--------|--------|---------------|\n")
		for _, rec := range result.Captures {
			status := evaluation.Status("")
			access := evaluation.AccessibilityStatus("")
			if ev, ok := result.EvaluationFor(rec.Device); ok {
				status = ev.Status
				access = ev.AccessibilityStatus
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", rec.Device, statusLabel(status), accessLabel(access))
		}
		b.WriteString("\n")
	}

	for _, rec := range result.Captures {
		fmt.Fprintf(&b, "### %s\n\n", rec.Device)
		fmt.Fprintf(&b, "![%s](%s)\n\n", rec.Device, filepath.Base(rec.ImagePath))

		if ev, ok := result.EvaluationFor(rec.Device); ok {
			writeEvaluation(&b, ev)
		} else {
			b.WriteString("_No evaluation received for this device._\n\n")
		}

		if len(rec.Findings) > 0 {
			b.WriteString("**Automated accessibility findings:**\n\n")
			for _, f := range rec.Findings {
				fmt.Fprintf(&b, "- `%s` %s\n", f.Kind, f.Description)
				if f.SuggestedFix != "" {
					fmt.Fprintf(&b, "  - Suggested fix: %s\n", f.SuggestedFix)
				}
			}
			b.WriteString("\n")
		}
	}

	if len(result.PriorityFixes) > 0 {
		b.WriteString("## Priority Fixes\n\n")
		for i, fix := range result.PriorityFixes {
			fmt.Fprintf(&b, "%d. %s\n", i+1, fix)
		}
		b.WriteString("\n")
	}

	if len(result.Evaluations) == 0 && result.RawResponse != "" {
		b.WriteString("## Raw Agent Output\n\n")
		b.WriteString("The agent response could not be parsed; verbatim text follows.\n\n")
		fmt.Fprintf(&b, "```\n%s\n```\n", result.RawResponse)
	}

	return b.String()
}

func writeEvaluation(b *strings.Builder, ev evaluation.DeviceEvaluation) {
	fmt.Fprintf(b, "**Status:** %s\n\n", statusLabel(ev.Status))
	if ev.Feedback != "" {
		fmt.Fprintf(b, "%s\n\n", ev.Feedback)
	}
	if len(ev.Issues) > 0 {
		b.WriteString("**Issues:**\n\n")
		for _, issue := range ev.Issues {
			fmt.Fprintf(b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
	if len(ev.Suggestions) > 0 {
		b.WriteString("**Suggestions:**\n\n")
		for _, s := range ev.Suggestions {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
}

// RenderComparison renders a before/after comparison as Markdown. Pure.
func RenderComparison(result *comparison.Result) string {
	var b strings.Builder

	b.WriteString("# Before/After Comparison\n\n")
	fmt.Fprintf(&b, "**URL:** %s\n\n", result.Before.URL)
	fmt.Fprintf(&b, "**Before:** %s\n\n", result.Before.Timestamp.Format(timestampLayout))
	fmt.Fprintf(&b, "**After:** %s\n\n", result.After.Timestamp.Format(timestampLayout))

	if result.OverallReady {
		b.WriteString("**Verdict:** ✅ every device reports good\n\n")
	} else {
		b.WriteString("**Verdict:** ❌ not ready\n\n")
	}

	b.WriteString("| Device | Before | After | Fixed | Remaining |\n")
	b.WriteString("|--------|--------|-------|-------|----------|\n")
	for _, dc := range result.Devices {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d |\n",
			dc.Device, statusLabel(dc.Before), statusLabel(dc.After),
			len(dc.FixedIssues), len(dc.RemainingIssues))
	}
	b.WriteString("\n")

	for _, dc := range result.Devices {
		if len(dc.FixedIssues) == 0 && len(dc.RemainingIssues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", dc.Device)
		if len(dc.FixedIssues) > 0 {
			b.WriteString("**Fixed:**\n\n")
			for _, issue := range dc.FixedIssues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
			b.WriteString("\n")
		}
		if len(dc.RemainingIssues) > 0 {
			b.WriteString("**Remaining:**\n\n")
			for _, issue := range dc.RemainingIssues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
