package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Bridge is a client for a local HTTP browser bridge: a sidecar process that
// owns the real browser and exposes page operations over REST (navigate,
// screenshot, in-page eval). The bridge keeps the profile directory, so
// cookies and logins survive across sessions and runs.
type Bridge struct {
	client *resty.Client
}

// NewBridge creates a client for the bridge listening at baseURL.
func NewBridge(baseURL string) *Bridge {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	return &Bridge{client: client}
}

// Health verifies the bridge is reachable. A failing health check means the
// browser capability is unavailable, which is fatal to a run.
func (b *Bridge) Health(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("browser bridge unreachable at %s: %w", b.client.BaseURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("browser bridge unhealthy: status %d", resp.StatusCode())
	}
	return nil
}

type sessionRequest struct {
	ProfileDir string `json:"profileDir,omitempty"`
	Headless   bool   `json:"headless"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

// Launch opens a browser session scoped to the given profile.
func (b *Bridge) Launch(ctx context.Context, cfg ProfileConfig) (Session, error) {
	var out sessionResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(sessionRequest{ProfileDir: cfg.ProfileDir, Headless: cfg.Headless}).
		SetResult(&out).
		Post("/session")
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to launch browser session: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("bridge returned no session id")
	}
	return &bridgeSession{client: b.client, id: out.SessionID}, nil
}

type bridgeSession struct {
	client *resty.Client
	id     string
}

type pageResponse struct {
	PageID string `json:"pageId"`
}

func (s *bridgeSession) NewPage(ctx context.Context) (Page, error) {
	var out pageResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&out).
		Post("/session/" + s.id + "/page")
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to open page: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.PageID == "" {
		return nil, fmt.Errorf("bridge returned no page id")
	}
	return &bridgePage{client: s.client, id: out.PageID}, nil
}

func (s *bridgeSession) Close() error {
	resp, err := s.client.R().Delete("/session/" + s.id)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to close session: status %d", resp.StatusCode())
	}
	return nil
}

type bridgePage struct {
	client *resty.Client
	id     string
}

func (p *bridgePage) SetViewport(width, height int, mobile bool) error {
	resp, err := p.client.R().
		SetBody(map[string]any{"width": width, "height": height, "mobile": mobile}).
		Post("/page/" + p.id + "/viewport")
	if err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to set viewport: status %d", resp.StatusCode())
	}
	return nil
}

func (p *bridgePage) SetUserAgent(ua string) error {
	resp, err := p.client.R().
		SetBody(map[string]any{"userAgent": ua}).
		Post("/page/" + p.id + "/useragent")
	if err != nil {
		return fmt.Errorf("failed to set user agent: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to set user agent: status %d", resp.StatusCode())
	}
	return nil
}

func (p *bridgePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	// The bridge enforces the navigation timeout itself; the request deadline
	// just needs headroom so the HTTP call outlives it.
	reqCtx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	resp, err := p.client.R().
		SetContext(reqCtx).
		SetBody(map[string]any{"url": url, "timeoutMs": timeout.Milliseconds()}).
		Post("/page/" + p.id + "/navigate")
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return ErrNavigationTimeout
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	if resp.StatusCode() == 504 {
		return ErrNavigationTimeout
	}
	if resp.IsError() {
		return fmt.Errorf("navigation failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (p *bridgePage) Screenshot(ctx context.Context) ([]byte, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		Get("/page/" + p.id + "/screenshot")
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("screenshot failed: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

type evalResponse struct {
	Result json.RawMessage `json:"result"`
}

func (p *bridgePage) Evaluate(ctx context.Context, script string, out any) error {
	var wrapped evalResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"script": script}).
		SetResult(&wrapped).
		Post("/page/" + p.id + "/eval")
	if err != nil {
		return fmt.Errorf("page script evaluation failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("page script evaluation failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out == nil || len(wrapped.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(wrapped.Result, out); err != nil {
		return fmt.Errorf("failed to decode eval result: %w", err)
	}
	return nil
}

func (p *bridgePage) Close() error {
	resp, err := p.client.R().Delete("/page/" + p.id)
	if err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to close page: status %d", resp.StatusCode())
	}
	return nil
}
