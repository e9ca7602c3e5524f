package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/n0madic/go-responses-adapter/wire"
)

// DefaultBaseURL is the production Responses API endpoint prefix.
const DefaultBaseURL = "https://api.openai.com/v1"

// defaultTimeout bounds a single upstream request. SSE streams can be
// long-lived, so it is generous.
const defaultTimeout = 5 * time.Minute

// ErrNoCredentials is returned when neither an API key nor a token source
// is configured.
var ErrNoCredentials = errors.New("upstream: no credentials configured")

// Client talks to the Responses API.
type Client struct {
	http        *resty.Client
	tokenSource oauth2.TokenSource
	apiKey      string
	limiter     *rate.Limiter
	verbose     bool
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates requests with a static bearer key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTokenSource authenticates requests with OAuth tokens, refreshed by the
// source as needed.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// WithBaseURL overrides the endpoint prefix.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(url) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithVerbose enables request and response summary logging.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// NewClient creates an upstream client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) bearerToken() (string, error) {
	if c.tokenSource != nil {
		tok, err := c.tokenSource.Token()
		if err != nil {
			return "", fmt.Errorf("upstream: token source: %w", err)
		}
		return tok.AccessToken, nil
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", ErrNoCredentials
}

func (c *Client) prepare(ctx context.Context, req *wire.Request) (*resty.Request, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: marshal request: %w", err)
	}

	if c.verbose {
		slog.Info("upstream.request",
			"model", req.Model,
			"input_items", len(req.Input),
			"tools", len(req.Tools),
			"include_count", len(req.Include),
			"service_tier", req.ServiceTier,
			"store", boolPtrState(req.Store),
			"stream", req.Stream,
			"instructions_chars", len(req.Instructions),
		)
	}

	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body), nil
}

// Create sends a non-stream request and returns the parsed response document.
func (c *Client) Create(ctx context.Context, req *wire.Request) (*wire.Document, error) {
	req.Stream = false

	r, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	var doc wire.Document
	resp, err := r.SetResult(&doc).Post("/responses")
	if err != nil {
		return nil, fmt.Errorf("upstream: request failed: %w", err)
	}
	c.logResponse(resp)

	if resp.StatusCode() >= 400 {
		return nil, ParseAPIError(resp.StatusCode(), resp.Body(), resp.Header())
	}
	return &doc, nil
}

// Stream sends a stream request and returns the raw SSE body. The caller
// owns the reader and must close it.
func (c *Client) Stream(ctx context.Context, req *wire.Request) (io.ReadCloser, error) {
	req.Stream = true

	r, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := r.
		SetHeader("Accept", "text/event-stream").
		SetDoNotParseResponse(true).
		Post("/responses")
	if err != nil {
		return nil, fmt.Errorf("upstream: request failed: %w", err)
	}
	c.logResponse(resp)

	if resp.StatusCode() >= 400 {
		body, _ := io.ReadAll(resp.RawBody())
		resp.RawBody().Close()
		return nil, ParseAPIError(resp.StatusCode(), body, resp.Header())
	}
	return resp.RawBody(), nil
}

func (c *Client) logResponse(resp *resty.Response) {
	if !c.verbose {
		return
	}
	attrs := []any{"status", resp.StatusCode()}
	if requestID := RequestID(resp.Header()); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	slog.Info("upstream.response", attrs...)
}

func boolPtrState(v *bool) string {
	if v == nil {
		return "unset"
	}
	if *v {
		return "true"
	}
	return "false"
}
