package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/viewport/internal/accessibility"
	"github.com/dstanley/viewport/internal/capture"
	"github.com/dstanley/viewport/internal/comparison"
	"github.com/dstanley/viewport/internal/evaluation"
	"github.com/dstanley/viewport/internal/runner"
)

func sampleRun() *runner.RunResult {
	return &runner.RunResult{
		URL:       "http://example.test",
		Timestamp: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Captures: []capture.Record{
			{
				Device:    "mobile",
				ImagePath: "/runs/x/mobile.png",
				Findings: []accessibility.Finding{
					{
						Kind:         accessibility.KindSmallTouchTarget,
						Description:  "1 touch target smaller than 44x44",
						SuggestedFix: "Increase tap target size to at least 44x44 pixels",
					},
				},
			},
			{Device: "desktop", ImagePath: "/runs/x/desktop.png"},
		},
		Evaluations: []evaluation.DeviceEvaluation{
			{
				Device:      "mobile",
				Status:      evaluation.StatusMinorIssues,
				Feedback:    "nav is cramped",
				Issues:      []string{"menu overlaps logo"},
				Suggestions: []string{"collapse nav below 400px"},
			},
		},
		Summary:       "mostly fine",
		PriorityFixes: []string{"collapse nav below 400px"},
	}
}

func TestRenderRunIncludesEveryCapture(t *testing.T) {
	md := RenderRun(sampleRun())

	assert.Contains(t, md, "# Responsive Design Report")
	assert.Contains(t, md, "**URL:** http://example.test")
	assert.Contains(t, md, "### mobile")
	assert.Contains(t, md, "### desktop")
	// Images reference by basename so the report stays relocatable with
	// its run directory.
	assert.Contains(t, md, "![mobile](mobile.png)")
	assert.NotContains(t, md, "/runs/x/mobile.png")
}

func TestRenderRunStatusMarkers(t *testing.T) {
	md := RenderRun(sampleRun())
	assert.Contains(t, md, "⚠️ minor issues")
	// desktop has no evaluation
	assert.Contains(t, md, "❓ unknown")
	assert.Contains(t, md, "_No evaluation received for this device._")
}

func TestRenderRunFindingsAndFixes(t *testing.T) {
	md := RenderRun(sampleRun())
	assert.Contains(t, md, "`small-touch-target` 1 touch target smaller than 44x44")
	assert.Contains(t, md, "Suggested fix: Increase tap target size")
	assert.Contains(t, md, "## Priority Fixes")
	assert.Contains(t, md, "1. collapse nav below 400px")
}

func TestRenderRunNoCaptures(t *testing.T) {
	md := RenderRun(&runner.RunResult{URL: "http://example.test"})
	assert.Contains(t, md, "No device captured successfully.")
}

func TestRenderRunRawFallbackWhenUnparsed(t *testing.T) {
	result := &runner.RunResult{
		URL:         "http://example.test",
		RawResponse: "free-form agent prose",
	}
	md := RenderRun(result)
	assert.Contains(t, md, "## Raw Agent Output")
	assert.Contains(t, md, "free-form agent prose")

	// Parsed runs never show the raw dump.
	assert.NotContains(t, RenderRun(sampleRun()), "## Raw Agent Output")
}

func TestRenderRunIsPure(t *testing.T) {
	result := sampleRun()
	assert.Equal(t, RenderRun(result), RenderRun(result))
}

func sampleComparison() *comparison.Result {
	before := sampleRun()
	after := &runner.RunResult{
		URL:       before.URL,
		Timestamp: before.Timestamp.Add(10 * time.Minute),
		Captures:  before.Captures,
		Evaluations: []evaluation.DeviceEvaluation{
			{Device: "mobile", Status: evaluation.StatusGood},
			{Device: "desktop", Status: evaluation.StatusGood},
		},
	}
	return comparison.Compare(before, after)
}

func TestRenderComparisonVerdictAndTable(t *testing.T) {
	md := RenderComparison(sampleComparison())

	assert.Contains(t, md, "# Before/After Comparison")
	assert.Contains(t, md, "**Verdict:** ✅ every device reports good")
	assert.Contains(t, md, "| Device | Before | After | Fixed | Remaining |")
	assert.Contains(t, md, "| mobile | ⚠️ minor issues | ✅ good | 1 | 0 |")

	assert.Contains(t, md, "**Fixed:**")
	assert.Contains(t, md, "- menu overlaps logo")
}

func TestRenderComparisonNotReady(t *testing.T) {
	result := sampleComparison()
	result.OverallReady = false
	assert.Contains(t, RenderComparison(result), "**Verdict:** ❌ not ready")
}

func TestWriteRunProducesArtifacts(t *testing.T) {
	result := sampleRun()
	result.OutputDir = t.TempDir()

	w := &Writer{}
	require.NoError(t, w.WriteRun(result))

	md, err := os.ReadFile(filepath.Join(result.OutputDir, "report.md"))
	require.NoError(t, err)
	assert.Equal(t, RenderRun(result), string(md))

	html, err := os.ReadFile(filepath.Join(result.OutputDir, "report.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(html), "<!DOCTYPE html>"))
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), `<img src="mobile.png"`)

	raw, err := os.ReadFile(filepath.Join(result.OutputDir, "run.json"))
	require.NoError(t, err)
	var restored runner.RunResult
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, result, &restored)
}

func TestWriteComparisonProducesArtifacts(t *testing.T) {
	dir := t.TempDir()
	result := sampleComparison()

	w := &Writer{}
	require.NoError(t, w.WriteComparison(result, dir))

	for _, name := range []string{"comparison.md", "comparison.html", "before.json", "after.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "before.json"))
	require.NoError(t, err)
	var before runner.RunResult
	require.NoError(t, json.Unmarshal(raw, &before))
	assert.Equal(t, result.Before, &before)
}
