// Package improve proxies editor text to an AI completion upstream.
package improve

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/metrics"
	"github.com/tidwall/gjson"
)

const (
	DefaultMaxChars = 20000
	DefaultMode     = "clarity"
	maxResponse     = 1 << 20
)

var prompts = map[string]string{
	"clarity":  "Rewrite the text so it reads clearly. Keep the meaning, language and tone. Return only the rewritten text.",
	"grammar":  "Fix spelling, grammar and punctuation. Change nothing else. Return only the corrected text.",
	"concise":  "Shorten the text without losing facts. Return only the shortened text.",
	"headline": "Write one concise news headline for the text. Return only the headline.",
}

// Modes lists the supported rewrite modes.
func Modes() []string {
	return []string{"clarity", "concise", "grammar", "headline"}
}

type Request struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type Response struct {
	Text  string `json:"text"`
	Mode  string `json:"mode"`
	Model string `json:"model,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []message `json:"messages"`
}

type Client struct {
	cfg  config.ImproveConfig
	http *http.Client
}

func NewClient(cfg config.ImproveConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.ResponsePath == "" {
		cfg.ResponsePath = "choices.0.message.content"
	}
	return &Client{cfg: cfg, http: hc}
}

// Configured reports whether an upstream URL is set.
func (c *Client) Configured() bool { return c != nil && c.cfg.URL != "" }

func (c *Client) Improve(ctx context.Context, req Request) (*Response, error) {
	if !c.Configured() {
		metrics.ImproveRequests.WithLabelValues("unconfigured").Inc()
		return nil, apperr.Unavailable("text improvement is not configured")
	}
	text := strings.TrimSpace(req.Text)
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = DefaultMode
	}
	prompt, ok := prompts[mode]
	switch {
	case text == "":
		return nil, apperr.Validation("invalid request", map[string]string{"text": "required"})
	case utf8.RuneCountInString(text) > c.cfg.MaxChars:
		return nil, apperr.Validation("invalid request", map[string]string{"text": fmt.Sprintf("maximum %d characters", c.cfg.MaxChars)})
	case !ok:
		return nil, apperr.Validation("invalid request", map[string]string{"mode": "must be one of: " + strings.Join(Modes(), ", ")})
	}

	body, err := json.Marshal(upstreamRequest{
		Model:    c.cfg.Model,
		Messages: []message{{Role: "system", Content: prompt}, {Role: "user", Content: text}},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.fail("upstream unreachable", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, c.fail("read upstream response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail("upstream error", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}
	if !gjson.ValidBytes(raw) {
		return nil, c.fail("upstream returned invalid json", nil)
	}
	out := gjson.GetBytes(raw, c.cfg.ResponsePath)
	if !out.Exists() || strings.TrimSpace(out.String()) == "" {
		return nil, c.fail("upstream response has no text at "+c.cfg.ResponsePath, nil)
	}
	metrics.ImproveRequests.WithLabelValues("ok").Inc()
	return &Response{
		Text:  strings.TrimSpace(out.String()),
		Mode:  mode,
		Model: gjson.GetBytes(raw, "model").String(),
	}, nil
}

func (c *Client) fail(msg string, cause error) error {
	metrics.ImproveRequests.WithLabelValues("upstream_error").Inc()
	logger.Warnf("improve: %s: %v", msg, cause)
	return apperr.BadGateway(msg, cause)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
