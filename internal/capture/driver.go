// Package capture drives a single-device screenshot plus accessibility probe
// against one URL.
//
// Capture is deliberately best-effort: a page that times out or errors during
// navigation is still screenshotted in whatever state it reached, because
// partially-broken pages are exactly what the pipeline needs to describe.
package capture

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dstanley/viewport/internal/accessibility"
	"github.com/dstanley/viewport/internal/browser"
	"github.com/dstanley/viewport/internal/device"
	"github.com/dstanley/viewport/internal/filelock"
	"github.com/dstanley/viewport/internal/logger"
	"github.com/dstanley/viewport/internal/probe"
)

// Record is the immutable result of one device capture within a run.
type Record struct {
	// Device is the profile name; downstream matching keys on it.
	Device string `json:"device"`

	// ImagePath locates the stored screenshot, the only artifact that
	// outlives the process.
	ImagePath string `json:"image_path"`

	// Findings holds the heuristic accessibility findings for this device.
	// Empty when the pass is disabled or the in-page probe failed.
	Findings []accessibility.Finding `json:"accessibility_findings,omitempty"`
}

// Driver captures one device at a time against a shared browser session.
type Driver struct {
	// Session is the long-lived browser session; the driver opens one
	// short-lived page per capture.
	Session browser.Session

	// OutputDir is the run directory screenshots are written into,
	// one <device>.png per capture.
	OutputDir string

	// SettleWait is slept after navigation so async rendering can finish.
	SettleWait time.Duration

	// NavTimeout bounds navigation. Expiry is a soft failure.
	NavTimeout time.Duration

	// Accessibility toggles the in-page probe and heuristic pass.
	Accessibility bool

	Logger logger.Logger
}

// Capture opens a page for the profile, navigates, screenshots, and probes.
//
// Navigation and probe failures degrade (logged, capture continues); only
// failures to obtain a page or a screenshot are returned as errors, since
// without an image the record is worthless.
func (d *Driver) Capture(ctx context.Context, url string, profile device.Profile) (*Record, error) {
	log := d.logger()

	page, err := d.Session.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open page for %s: %w", profile.Name, err)
	}
	defer page.Close()

	if err := page.SetViewport(profile.Width, profile.Height, profile.Mobile); err != nil {
		return nil, fmt.Errorf("failed to set %s viewport: %w", profile.Name, err)
	}
	if profile.UserAgent != "" {
		if err := page.SetUserAgent(profile.UserAgent); err != nil {
			return nil, fmt.Errorf("failed to set %s user agent: %w", profile.Name, err)
		}
	}

	if err := page.Navigate(ctx, url, d.NavTimeout); err != nil {
		log.LogWarn(fmt.Sprintf("%s: navigation did not complete: %v (capturing current page state)", profile.Name, err))
	}

	if d.SettleWait > 0 {
		select {
		case <-time.After(d.SettleWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	img, err := page.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed for %s: %w", profile.Name, err)
	}

	imagePath := filepath.Join(d.OutputDir, profile.Name+".png")
	if err := filelock.AtomicWrite(imagePath, img); err != nil {
		return nil, fmt.Errorf("failed to store screenshot for %s: %w", profile.Name, err)
	}

	record := &Record{Device: profile.Name, ImagePath: imagePath}

	if d.Accessibility {
		var res probe.Result
		if err := page.Evaluate(ctx, probe.Script, &res); err != nil {
			log.LogWarn(fmt.Sprintf("%s: accessibility probe failed: %v", profile.Name, err))
		} else {
			record.Findings = accessibility.Analyze(&res, profile.Mobile)
			log.LogDebug(fmt.Sprintf("%s: %d accessibility findings", profile.Name, len(record.Findings)))
		}
	}

	return record, nil
}

func (d *Driver) logger() logger.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logger.NewNoOpLogger()
}
