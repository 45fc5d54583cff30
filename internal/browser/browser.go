// Package browser defines the browser-automation capability the pipeline
// depends on, and a client for a local HTTP browser bridge implementing it.
//
// The pipeline only ever talks to the Session/Page interfaces; captures never
// assume a particular browser. The bridge client in this package is the
// production implementation, tests substitute fakes.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNavigationTimeout marks a navigation that did not complete within its
// timeout. Callers treat it as a soft failure: the page is captured in
// whatever state it reached.
var ErrNavigationTimeout = errors.New("navigation timed out")

// ProfileConfig selects the persistent browser profile a session runs under.
// Reusing a profile directory across runs is what keeps authenticated
// sessions alive between a login and later captures.
type ProfileConfig struct {
	// ProfileDir is the browser user-data directory. Empty means ephemeral.
	ProfileDir string

	// Headless requests a headless browser. Login flows need a visible window.
	Headless bool
}

// Browser launches sessions. A launch failure is a capability-level failure
// and fatal to the whole run.
type Browser interface {
	Launch(ctx context.Context, cfg ProfileConfig) (Session, error)
}

// Session is one browser lifetime owning a profile. It produces short-lived
// pages, one per device capture.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab scoped to one capture.
type Page interface {
	SetViewport(width, height int, mobile bool) error
	SetUserAgent(ua string) error

	// Navigate loads url, failing with ErrNavigationTimeout after timeout.
	// The page keeps whatever state it reached; callers may still screenshot.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	Screenshot(ctx context.Context) ([]byte, error)

	// Evaluate runs script in page context and decodes its JSON result into out.
	Evaluate(ctx context.Context, script string, out any) error

	Close() error
}
