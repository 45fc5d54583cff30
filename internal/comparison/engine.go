// Package comparison diffs two evaluation runs of the same URL, typically
// before and after a fix attempt.
package comparison

import (
	"github.com/dstanley/viewport/internal/evaluation"
	"github.com/dstanley/viewport/internal/runner"
)

// StatusUnknown marks a device that has no evaluation in one of the runs.
// It exists only in comparison output; the agent never emits it.
const StatusUnknown evaluation.Status = "unknown"

// DeviceComparison is the before/after verdict for one device.
type DeviceComparison struct {
	Device string `json:"device"`

	// Before and After are the per-run statuses, StatusUnknown when the
	// run has no evaluation for this device.
	Before evaluation.Status `json:"before"`
	After  evaluation.Status `json:"after"`

	// FixedIssues are issues reported before and absent after, by exact
	// string match, deduplicated in first-seen order.
	FixedIssues []string `json:"fixed_issues,omitempty"`

	// RemainingIssues are the after-run's issues verbatim.
	RemainingIssues []string `json:"remaining_issues,omitempty"`
}

// Result is the full comparison across devices.
type Result struct {
	Before *runner.RunResult `json:"before"`
	After  *runner.RunResult `json:"after"`

	// Devices holds one entry per device either run touched: the before
	// run's capture order first, then devices only the after run saw.
	Devices []DeviceComparison `json:"devices"`

	// OverallReady is true when every compared device's after run reports
	// status good and an accessibility status that is absent or good. Any
	// unknown after-status flips it false.
	OverallReady bool `json:"overall_ready"`
}

// Compare diffs two runs device by device. Matching is by device name only;
// exact issue-string matching means a rephrased issue counts as both fixed
// and new, which is the accepted cost of staying deterministic.
func Compare(before, after *runner.RunResult) *Result {
	result := &Result{
		Before:       before,
		After:        after,
		OverallReady: true,
	}

	for _, name := range deviceOrder(before, after) {
		dc := DeviceComparison{
			Device: name,
			Before: StatusUnknown,
			After:  StatusUnknown,
		}

		var beforeIssues []string
		if ev, ok := before.EvaluationFor(name); ok {
			dc.Before = ev.Status
			beforeIssues = ev.Issues
		}

		ready := false
		if ev, ok := after.EvaluationFor(name); ok {
			dc.After = ev.Status
			dc.RemainingIssues = ev.Issues
			ready = ev.Status == evaluation.StatusGood &&
				(ev.AccessibilityStatus == "" || ev.AccessibilityStatus == evaluation.AccessGood)
		}

		dc.FixedIssues = subtract(beforeIssues, dc.RemainingIssues)

		if !ready {
			result.OverallReady = false
		}
		result.Devices = append(result.Devices, dc)
	}

	return result
}

// deviceOrder lists device names in the before run's capture order, then any
// devices only the after run captured. Evaluations naming a device neither
// run captured are ignored here; they remain visible in the run results.
func deviceOrder(before, after *runner.RunResult) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, rec := range before.Captures {
		add(rec.Device)
	}
	for _, rec := range after.Captures {
		add(rec.Device)
	}
	return out
}

// subtract returns the members of before absent from after, deduplicated in
// first-seen order.
func subtract(before, after []string) []string {
	remaining := make(map[string]bool, len(after))
	for _, issue := range after {
		remaining[issue] = true
	}

	seen := make(map[string]bool, len(before))
	var out []string
	for _, issue := range before {
		if remaining[issue] || seen[issue] {
			continue
		}
		seen[issue] = true
		out = append(out, issue)
	}
	return out
}
