package hrmsapi

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	errors "github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

const maxErrorBody = 64 << 10

// API is the subset of the HRMS backend the pages talk to. Every call carries
// the signed-in user's bearer token; an empty token sends no Authorization.
type API interface {
	Get(ctx context.Context, token, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, token, path string, body, out interface{}) error
	Put(ctx context.Context, token, path string, body, out interface{}) error
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	inflight   singleflight.Group
}

func NewClient(cfg Config, lg *slog.Logger) *Client {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     lg,
	}
}

// Get coalesces identical concurrent reads for the same token so a burst of
// page loads costs one backend call. The shared call is detached from the
// caller's cancellation and bounded by the client timeout only; each caller
// stops waiting when its own context ends.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	target := c.url(path, query)
	key := tokenKey(token) + " " + target

	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		return c.do(shared, http.MethodGet, target, token, nil)
	})

	select {
	case <-ctx.Done():
		return errors.NewBackendUnavailableError(ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("backend request coalesced", "path", path)
		}
		if res.Err != nil {
			return res.Err
		}
		return decodeEnvelope(res.Val.([]byte), out)
	}
}

func (c *Client) Post(ctx context.Context, token, path string, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, token, path, body, out)
}

func (c *Client) Put(ctx context.Context, token, path string, body, out interface{}) error {
	return c.send(ctx, http.MethodPut, token, path, body, out)
}

// Ping reports whether the backend answers at all. Any response below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewBackendUnavailableError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.NewBackendError(resp.StatusCode, fmt.Sprintf("backend answered %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, token, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.NewInternalError("failed to encode backend request", err)
		}
	}

	raw, err := c.do(ctx, method, c.url(path, nil), token, payload)
	if err != nil {
		return err
	}
	return decodeEnvelope(raw, out)
}

func (c *Client) do(ctx context.Context, method, target, token string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.NewInternalError("failed to create backend request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	lg := logger.From(ctx)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		lg.Error("backend request failed", "method", method, "url", target, "error", err)
		return nil, errors.NewBackendUnavailableError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewBackendUnavailableError(err)
	}

	lg.Debug("backend request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		lg.Warn("backend rejected request", "method", method, "url", target, "status", resp.StatusCode, "message", msg)
		return nil, errors.NewBackendError(resp.StatusCode, msg)
	}

	return raw, nil
}

func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func tokenKey(token string) string {
	if token == "" {
		return "anonymous"
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// errorMessage pulls a human message out of an error body: {"message"} first,
// then {"error"} as a string or as {"error":{"message"}}.
func errorMessage(raw []byte) string {
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	if len(body.Error) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(body.Error, &s) == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// decodeEnvelope unwraps {"data": ...} when present and decodes the bare body
// otherwise.
func decodeEnvelope(raw []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var envelope map[string]json.RawMessage
	if json.Unmarshal(raw, &envelope) == nil {
		if data, ok := envelope["data"]; ok && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			raw = data
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewBackendError(http.StatusBadGateway, "Unexpected response from server").WithCause(err)
	}
	return nil
}
