package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/viewport/internal/capture"
	"github.com/dstanley/viewport/internal/evaluation"
	"github.com/dstanley/viewport/internal/runner"
)

func run(captures []string, evals ...evaluation.DeviceEvaluation) *runner.RunResult {
	result := &runner.RunResult{Evaluations: evals}
	for _, name := range captures {
		result.Captures = append(result.Captures, capture.Record{Device: name})
	}
	return result
}

func TestCompareAllGoodIsReady(t *testing.T) {
	before := run([]string{"mobile", "desktop"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusMinorIssues},
		evaluation.DeviceEvaluation{Device: "desktop", Status: evaluation.StatusGood},
	)
	after := run([]string{"mobile", "desktop"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
		evaluation.DeviceEvaluation{Device: "desktop", Status: evaluation.StatusGood},
	)

	result := Compare(before, after)
	assert.True(t, result.OverallReady)
	require.Len(t, result.Devices, 2)
	assert.Equal(t, "mobile", result.Devices[0].Device)
	assert.Equal(t, "desktop", result.Devices[1].Device)
	assert.Equal(t, evaluation.StatusMinorIssues, result.Devices[0].Before)
	assert.Equal(t, evaluation.StatusGood, result.Devices[0].After)
}

func TestCompareOneBrokenFlipsReadiness(t *testing.T) {
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
	)
	after := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusBroken},
	)

	assert.False(t, Compare(before, after).OverallReady)
}

func TestCompareAccessibilityGatesReadiness(t *testing.T) {
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
	)

	tests := []struct {
		name   string
		access evaluation.AccessibilityStatus
		ready  bool
	}{
		{"absent", "", true},
		{"good", evaluation.AccessGood, true},
		{"issues", evaluation.AccessIssues, false},
		{"critical", evaluation.AccessCritical, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := run([]string{"mobile"},
				evaluation.DeviceEvaluation{
					Device:              "mobile",
					Status:              evaluation.StatusGood,
					AccessibilityStatus: tt.access,
				},
			)
			assert.Equal(t, tt.ready, Compare(before, after).OverallReady)
		})
	}
}

func TestCompareMissingAfterEvaluationIsUnknownAndNotReady(t *testing.T) {
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
	)
	after := run([]string{"mobile"})

	result := Compare(before, after)
	require.Len(t, result.Devices, 1)
	assert.Equal(t, StatusUnknown, result.Devices[0].After)
	assert.False(t, result.OverallReady)
}

func TestCompareFixedAndRemainingIssues(t *testing.T) {
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{
			Device: "mobile",
			Status: evaluation.StatusBroken,
			Issues: []string{"fix X", "fix Y"},
		},
	)
	after := run([]string{"mobile"},
		evaluation.DeviceEvaluation{
			Device: "mobile",
			Status: evaluation.StatusMinorIssues,
			Issues: []string{"fix Y"},
		},
	)

	result := Compare(before, after)
	require.Len(t, result.Devices, 1)
	assert.Equal(t, []string{"fix X"}, result.Devices[0].FixedIssues)
	assert.Equal(t, []string{"fix Y"}, result.Devices[0].RemainingIssues)
}

func TestCompareFixedNeverIntersectsRemaining(t *testing.T) {
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{
			Device: "mobile",
			Issues: []string{"a", "b", "b", "c"},
		},
	)
	after := run([]string{"mobile"},
		evaluation.DeviceEvaluation{
			Device: "mobile",
			Issues: []string{"c", "d"},
		},
	)

	dc := Compare(before, after).Devices[0]
	assert.Equal(t, []string{"a", "b"}, dc.FixedIssues, "deduped, first-seen order")
	for _, fixed := range dc.FixedIssues {
		assert.NotContains(t, dc.RemainingIssues, fixed)
	}
}

func TestCompareRephrasedIssueCountsBothWays(t *testing.T) {
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Issues: []string{"nav overlaps the logo"}},
	)
	after := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Issues: []string{"logo overlapped by nav"}},
	)

	dc := Compare(before, after).Devices[0]
	assert.Equal(t, []string{"nav overlaps the logo"}, dc.FixedIssues)
	assert.Equal(t, []string{"logo overlapped by nav"}, dc.RemainingIssues)
}

func TestCompareDeviceOrderBeforeThenAfterOnly(t *testing.T) {
	before := run([]string{"mobile", "desktop"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
		evaluation.DeviceEvaluation{Device: "desktop", Status: evaluation.StatusGood},
	)
	after := run([]string{"mobile", "tablet", "desktop"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
		evaluation.DeviceEvaluation{Device: "tablet", Status: evaluation.StatusGood},
		evaluation.DeviceEvaluation{Device: "desktop", Status: evaluation.StatusGood},
	)

	result := Compare(before, after)
	var order []string
	for _, dc := range result.Devices {
		order = append(order, dc.Device)
	}
	assert.Equal(t, []string{"mobile", "desktop", "tablet"}, order)
}

func TestCompareEmptyRunsAreVacuouslyReady(t *testing.T) {
	result := Compare(&runner.RunResult{}, &runner.RunResult{})
	assert.Empty(t, result.Devices)
	assert.True(t, result.OverallReady)
}

func TestCompareIgnoresEvaluationsWithoutCaptures(t *testing.T) {
	// The agent sometimes evaluates a device the run never captured; such
	// entries stay visible in the run result but carry no weight here.
	before := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
		evaluation.DeviceEvaluation{Device: "ghost", Status: evaluation.StatusBroken},
	)
	after := run([]string{"mobile"},
		evaluation.DeviceEvaluation{Device: "mobile", Status: evaluation.StatusGood},
	)

	result := Compare(before, after)
	require.Len(t, result.Devices, 1)
	assert.Equal(t, "mobile", result.Devices[0].Device)
	assert.True(t, result.OverallReady)
}
