package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/viewport/internal/agent"
	"github.com/dstanley/viewport/internal/browser"
	"github.com/dstanley/viewport/internal/device"
	"github.com/dstanley/viewport/internal/evaluation"
)

type fakePage struct {
	navErr error
}

func (p *fakePage) SetViewport(width, height int, mobile bool) error { return nil }
func (p *fakePage) SetUserAgent(ua string) error                     { return nil }
func (p *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return p.navErr
}
func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png-bytes"), nil
}
func (p *fakePage) Evaluate(ctx context.Context, script string, out any) error {
	return errors.New("probe disabled in fake")
}
func (p *fakePage) Close() error { return nil }

type fakeSession struct {
	calls     int
	failCalls map[int]error
}

func (s *fakeSession) NewPage(ctx context.Context) (browser.Page, error) {
	s.calls++
	if err, ok := s.failCalls[s.calls]; ok {
		return nil, err
	}
	return &fakePage{}, nil
}
func (s *fakeSession) Close() error { return nil }

type fakeAgent struct {
	response  string
	submitErr error
	streamErr error

	lastRequest agent.Request
	submits     int
}

func (a *fakeAgent) Submit(ctx context.Context, req agent.Request) (*agent.Stream, error) {
	a.submits++
	a.lastRequest = req
	if a.submitErr != nil {
		return nil, a.submitErr
	}
	events := make(chan agent.Event, 1)
	events <- agent.Event{Kind: agent.EventTextDelta, Text: a.response}
	close(events)
	streamErr := a.streamErr
	return agent.NewStream(events, func() error { return streamErr }), nil
}

func twoDeviceRegistry() *device.Registry {
	return device.NewRegistry([]device.Profile{
		{Name: "mobile", Width: 375, Height: 812, Mobile: true},
		{Name: "desktop", Width: 1920, Height: 1080},
	})
}

func agentJSON(t *testing.T, evals []evaluation.DeviceEvaluation) string {
	t.Helper()
	raw, err := json.Marshal(evaluation.Payload{
		Evaluations:   evals,
		Summary:       "summary text",
		PriorityFixes: []string{"fix the nav"},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestRunOnceCapturesAllDevicesInOrder(t *testing.T) {
	ag := &fakeAgent{response: agentJSON(t, []evaluation.DeviceEvaluation{
		{Device: "mobile", Status: evaluation.StatusGood},
		{Device: "desktop", Status: evaluation.StatusGood},
	})}
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    &fakeSession{},
		Agent:      ag,
		OutputRoot: t.TempDir(),
	}

	result, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.NoError(t, err)

	require.Len(t, result.Captures, 2)
	assert.Equal(t, "mobile", result.Captures[0].Device)
	assert.Equal(t, "desktop", result.Captures[1].Device)

	for _, rec := range result.Captures {
		data, err := os.ReadFile(rec.ImagePath)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
	}

	assert.Equal(t, "summary text", result.Summary)
	assert.Equal(t, []string{"fix the nav"}, result.PriorityFixes)
	require.Len(t, result.Evaluations, 2)
	assert.Equal(t, 1, ag.submits, "one batched agent turn per run")
	assert.Empty(t, ag.lastRequest.WorkDir)
	assert.False(t, ag.lastRequest.AllowEdits)
}

func TestRunOnceCreatesTimestampedRunDir(t *testing.T) {
	root := t.TempDir()
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    &fakeSession{},
		Agent:      &fakeAgent{response: agentJSON(t, nil)},
		OutputRoot: root,
	}

	result, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.NoError(t, err)

	assert.Equal(t, root, filepath.Dir(result.OutputDir))
	name := filepath.Base(result.OutputDir)
	_, parseErr := time.Parse(runDirLayout, name)
	assert.NoError(t, parseErr, "run dir %q must be a timestamp", name)
}

func TestRunOnceSkipsFailedDeviceAndContinues(t *testing.T) {
	session := &fakeSession{failCalls: map[int]error{1: errors.New("tab crashed")}}
	ag := &fakeAgent{response: agentJSON(t, nil)}
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    session,
		Agent:      ag,
		OutputRoot: t.TempDir(),
	}

	result, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.NoError(t, err)

	require.Len(t, result.Captures, 1)
	assert.Equal(t, "desktop", result.Captures[0].Device)
	assert.Equal(t, 1, ag.submits)
}

func TestRunOnceZeroCapturesSkipsAgent(t *testing.T) {
	session := &fakeSession{failCalls: map[int]error{
		1: errors.New("tab crashed"),
		2: errors.New("tab crashed"),
	}}
	ag := &fakeAgent{}
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    session,
		Agent:      ag,
		OutputRoot: t.TempDir(),
	}

	result, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Captures)
	assert.Empty(t, result.Evaluations)
	assert.Equal(t, 0, ag.submits, "no captures means no agent turn")
}

func TestRunOnceKeepsRawResponseOnParseFailure(t *testing.T) {
	ag := &fakeAgent{response: "I could not produce JSON, sorry."}
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    &fakeSession{},
		Agent:      ag,
		OutputRoot: t.TempDir(),
	}

	result, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Evaluations)
	assert.Equal(t, "I could not produce JSON, sorry.", result.RawResponse)
}

func TestRunOnceAgentUnavailableIsFatal(t *testing.T) {
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    &fakeSession{},
		Agent:      &fakeAgent{submitErr: errors.New("binary not found")},
		OutputRoot: t.TempDir(),
	}

	_, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation agent unavailable")
}

func TestRunOnceStreamErrorKeepsPartialText(t *testing.T) {
	ag := &fakeAgent{
		response:  agentJSON(t, []evaluation.DeviceEvaluation{{Device: "mobile", Status: evaluation.StatusBroken}}),
		streamErr: errors.New("process exited 1"),
	}
	r := &Runner{
		Registry:   twoDeviceRegistry(),
		Session:    &fakeSession{},
		Agent:      ag,
		OutputRoot: t.TempDir(),
	}

	result, err := r.RunOnce(context.Background(), "http://example.test", Options{})
	require.NoError(t, err, "stream failure degrades, run still succeeds")
	require.Len(t, result.Evaluations, 1)
	assert.Equal(t, evaluation.StatusBroken, result.Evaluations[0].Status)
}

func TestRunResultEvaluationFor(t *testing.T) {
	result := &RunResult{Evaluations: []evaluation.DeviceEvaluation{
		{Device: "mobile", Status: evaluation.StatusGood},
	}}

	ev, ok := result.EvaluationFor("mobile")
	require.True(t, ok)
	assert.Equal(t, evaluation.StatusGood, ev.Status)

	_, ok = result.EvaluationFor("desktop")
	assert.False(t, ok)
}

func TestRunResultRoundTripsThroughJSON(t *testing.T) {
	original := &RunResult{
		URL:       "http://example.test",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		OutputDir: "/tmp/runs/2026-03-01_12-00-00",
		Evaluations: []evaluation.DeviceEvaluation{
			{Device: "mobile", Status: evaluation.StatusGood},
		},
		Summary: "fine",
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var restored RunResult
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, original, &restored)
}

func TestFixerSkipsWhenNothingActionable(t *testing.T) {
	ag := &fakeAgent{}
	f := &Fixer{Agent: ag}

	applied, err := f.ApplyFixes(context.Background(), nil, t.TempDir())
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 0, ag.submits)
}

func TestFixerDispatchesEditTurn(t *testing.T) {
	ag := &fakeAgent{response: "done"}
	f := &Fixer{Agent: ag}
	dir := t.TempDir()

	evals := []evaluation.DeviceEvaluation{
		{Device: "mobile", Suggestions: []string{"collapse the nav"}},
	}

	applied, err := f.ApplyFixes(context.Background(), evals, dir)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, dir, ag.lastRequest.WorkDir)
	assert.True(t, ag.lastRequest.AllowEdits)
	assert.Contains(t, ag.lastRequest.Message, "collapse the nav")
}

func TestFixerStreamFailureIsError(t *testing.T) {
	ag := &fakeAgent{response: "partial", streamErr: fmt.Errorf("killed")}
	f := &Fixer{Agent: ag}

	evals := []evaluation.DeviceEvaluation{{Device: "mobile", Issues: []string{"overflow"}}}
	applied, err := f.ApplyFixes(context.Background(), evals, t.TempDir())
	require.Error(t, err)
	assert.False(t, applied)
}
