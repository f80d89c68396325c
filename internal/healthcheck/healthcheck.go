// Package healthcheck pings an external monitor when a live run completes,
// so a missed week shows up as an alert instead of silence.
package healthcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"steeple/internal/config"
)

const userAgent = "Steeple/0.1.0"

// Pinger reports run completion to an external monitor.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPinger builds a pinger backed by the configured URL. When no URL is
// configured, a noop implementation is returned.
func NewPinger(cfg *config.Config) Pinger {
	url := strings.TrimSpace(cfg.Healthcheck.PingURL)
	if url == "" {
		return noopPinger{}
	}
	return &httpPinger{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type httpPinger struct {
	url    string
	client *http.Client
}

func (p *httpPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("build healthcheck request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send healthcheck ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("healthcheck returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }
