// Package remote is the typed HTTP client for the Superfume backend.
//
// Every method returns either its payload, an *apperr.HTTPError for a non-2xx
// answer (or an undecodable body), or an *apperr.NetworkError when the server
// could not be reached in time. Nothing else escapes except request encoding
// bugs.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/superfume-sync/config"
	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/secret"
	"github.com/fekuna/superfume-sync/pkg/logger"
	"github.com/fekuna/superfume-sync/pkg/utilities"
)

const maxBodyBytes = 4 << 20

type Client struct {
	baseURL string
	routes  config.RoutesConfig
	http    *http.Client
	logger  logger.ZapLogger
}

func NewClient(cfg *config.RemoteConfig, tokens secret.Store, log logger.ZapLogger) *Client {
	return NewClientWithTransport(cfg, tokens, http.DefaultTransport, log)
}

// NewClientWithTransport lets callers swap the underlying RoundTripper.
func NewClientWithTransport(cfg *config.RemoteConfig, tokens secret.Store, base http.RoundTripper, log logger.ZapLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		routes:  cfg.Routes,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authTransport{base: base, tokens: tokens, now: time.Now},
		},
		logger: log,
	}
}

// authTransport attaches the bearer token and a request id to every call.
type authTransport struct {
	base   http.RoundTripper
	tokens secret.Store
	now    func() time.Time
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.tokens != nil {
		if token, ok := t.tokens.Token(); ok && secret.Usable(token, t.now()) {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", utilities.NewKSUID())
	}
	return t.base.RoundTrip(r)
}

func expand(tmpl string, id int64) string {
	return strings.ReplaceAll(tmpl, "{id}", strconv.FormatInt(id, 10))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("remote call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return &apperr.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &apperr.NetworkError{Err: err}
	}

	c.logger.Debug("remote call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperr.HTTPError{StatusCode: resp.StatusCode, Message: serverMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apperr.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response body: %v", err),
		}
	}
	return nil
}

// serverMessage extracts the human readable reason from an error body.
func serverMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "mensaje", "error"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
