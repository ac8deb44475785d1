package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okrtracker/okr-web/internal/logging"
)

const (
	DefaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Options tunes a Transport. Zero values pick defaults.
type Options struct {
	Timeout    time.Duration
	RPS        float64
	Burst      int
	HTTPClient *http.Client
}

// Transport handles communication with the OKR REST API
type Transport struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
}

// New creates a Transport rooted at baseURL (scheme and host, no API path).
func New(baseURL string, opts Options) *Transport {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    &Metrics{},
	}
}

// BaseURL returns the API root.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Metrics returns the call metrics collected by this transport.
func (t *Transport) Metrics() *Metrics {
	return t.metrics
}

// Request describes a single REST interaction.
type Request struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      any
	// Token is sent as a bearer credential when non-empty.
	Token string
}

// Do issues req and decodes a JSON response into T. An empty body decodes to
// the zero value. Errors wrap ErrTransport, ErrUnauthorized, ErrNotFound or
// ErrUpstream.
func Do[T any](ctx context.Context, t *Transport, req Request) (T, error) {
	var out T
	start := time.Now()

	raw, err := t.roundTrip(ctx, req)
	if err == nil && len(bytes.TrimSpace(raw)) > 0 {
		if derr := json.Unmarshal(raw, &out); derr != nil {
			err = fmt.Errorf("%w: decode %s response: %v", ErrTransport, req.Operation, derr)
		}
	}

	t.metrics.record(time.Since(start), err)
	return out, err
}

func (t *Transport) roundTrip(ctx context.Context, req Request) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrTransport, err)
	}

	u := t.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if rid := logging.RequestID(ctx); rid != "" {
		httpReq.Header.Set("X-Request-Id", rid)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

func statusError(code int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}

	var kind error
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthorized
	case http.StatusNotFound:
		kind = ErrNotFound
	default:
		kind = ErrUpstream
	}
	if snippet == "" {
		return fmt.Errorf("%w: status %d", kind, code)
	}
	return fmt.Errorf("%w: status %d: %s", kind, code, snippet)
}

// Ping checks that the API host answers HTTP at all. Any status counts as
// reachable.
func (t *Transport) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, t.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp.Body.Close()
	return nil
}

// Recover turns an error from Do into a Result carrying fallback, logging it
// under the operation name.
func Recover[T any](ctx context.Context, operation string, fallback T, err error) Result[T] {
	logging.FromContext(ctx).LogError(operation, err)
	return Failed(fallback, err)
}

// PathEscape escapes a single path segment.
func PathEscape(segment string) string {
	return url.PathEscape(segment)
}

// TokenSource supplies the bearer token for the current session.
type TokenSource interface {
	BearerToken() string
}

// BearerToken reads ts, treating a nil source as anonymous.
func BearerToken(ts TokenSource) string {
	if ts == nil {
		return ""
	}
	return ts.BearerToken()
}
