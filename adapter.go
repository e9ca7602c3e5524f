// Package adapter normalizes the OpenAI Responses API behind a canonical,
// provider-neutral call surface: one request shape in, one content and
// stream-event model out.
package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/n0madic/go-responses-adapter/api"
	"github.com/n0madic/go-responses-adapter/models"
	"github.com/n0madic/go-responses-adapter/request"
	"github.com/n0madic/go-responses-adapter/response"
	"github.com/n0madic/go-responses-adapter/stream"
	"github.com/n0madic/go-responses-adapter/upstream"
	"github.com/n0madic/go-responses-adapter/wire"
)

// Provider binds one model id to an upstream transport.
type Provider struct {
	modelID string
	caps    models.Capabilities
	client  *upstream.Client
	sdk     *upstream.SDKClient
	verbose bool
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithClient sets the HTTP transport. Defaults to a plain client reading no
// credentials, so most callers set this.
func WithClient(c *upstream.Client) ProviderOption {
	return func(p *Provider) { p.client = c }
}

// WithSDKClient routes non-stream calls through the official SDK transport.
// Streaming always uses the HTTP transport.
func WithSDKClient(c *upstream.SDKClient) ProviderOption {
	return func(p *Provider) { p.sdk = c }
}

// WithVerboseLogging enables per-call summary logging.
func WithVerboseLogging(v bool) ProviderOption {
	return func(p *Provider) { p.verbose = v }
}

// New creates a Provider for the given model id. Capabilities are derived
// from the id once, at construction.
func New(modelID string, opts ...ProviderOption) *Provider {
	p := &Provider{
		modelID: modelID,
		caps:    models.For(modelID),
		client:  upstream.NewClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ModelID returns the bound model id.
func (p *Provider) ModelID() string { return p.modelID }

// Capabilities returns the derived capability profile.
func (p *Provider) Capabilities() models.Capabilities { return p.caps }

// Generate performs a non-stream call and returns the complete normalized
// response.
func (p *Provider) Generate(ctx context.Context, opts api.CallOptions) (*api.Response, error) {
	req, warnings, err := request.Build(p.modelID, opts, p.caps)
	if err != nil {
		return nil, err
	}
	if p.verbose {
		slog.Info("adapter.generate", "model", p.modelID, "warnings", len(warnings))
	}

	doc, err := p.createDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	if doc.Error != nil {
		return nil, fmt.Errorf("response failed: %s", doc.Error.Message)
	}

	mapped := response.MapOutput(doc.Output, containsString(req.Include, request.IncludeLogprobs))

	incompleteReason := ""
	if doc.IncompleteDetails != nil {
		incompleteReason = doc.IncompleteDetails.Reason
	}

	resp := &api.Response{
		Content:      mapped.Content,
		FinishReason: response.MapFinishReason(incompleteReason, mapped.HasFunctionCall),
		Usage:        response.MapUsage(doc.Usage),
		Warnings:     warnings,
		ResponseID:   doc.ID,
		ModelID:      doc.Model,
		Timestamp:    time.Unix(int64(doc.CreatedAt), 0).UTC(),
	}

	meta := map[string]any{}
	if doc.ServiceTier != "" {
		meta["service_tier"] = doc.ServiceTier
	}
	if len(mapped.Logprobs) > 0 {
		meta["logprobs"] = mapped.Logprobs
	}
	if len(meta) > 0 {
		resp.Metadata = map[string]any{"openai": meta}
	}
	return resp, nil
}

func (p *Provider) createDocument(ctx context.Context, req *wire.Request) (*wire.Document, error) {
	if p.sdk != nil {
		return p.sdk.Create(ctx, req)
	}
	return p.client.CreateWithRetry(ctx, req)
}

// Stream performs a streaming call. The returned channel is unbuffered:
// consuming pace is the backpressure mechanism. It always carries a
// stream-start event first and exactly one finish event last, then closes.
func (p *Provider) Stream(ctx context.Context, opts api.CallOptions) (<-chan api.StreamEvent, error) {
	req, warnings, err := request.Build(p.modelID, opts, p.caps)
	if err != nil {
		return nil, err
	}
	if p.verbose {
		slog.Info("adapter.stream", "model", p.modelID, "warnings", len(warnings))
	}

	body, err := p.client.StreamWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	norm := stream.NewNormalizer(stream.Options{
		IncludeRaw:      opts.IncludeRawChunks,
		CollectLogprobs: containsString(req.Include, request.IncludeLogprobs),
	})

	ch := make(chan api.StreamEvent)
	go func() {
		defer close(ch)
		defer body.Close()

		if !send(ctx, ch, norm.Start(warnings)) {
			return
		}

		r := stream.NewReader(body)
		for {
			data, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				if !send(ctx, ch, api.StreamEvent{
					Type:         api.EventError,
					Err:          err,
					ErrorMessage: err.Error(),
				}) {
					return
				}
				break
			}
			for _, evt := range norm.Process(data) {
				if !send(ctx, ch, evt) {
					return
				}
			}
		}

		for _, evt := range norm.Flush() {
			if !send(ctx, ch, evt) {
				return
			}
		}
		if p.verbose && norm.Anomalies() > 0 {
			slog.Warn("adapter.stream finished with anomalies",
				"model", p.modelID, "anomalies", norm.Anomalies())
		}
	}()
	return ch, nil
}

func send(ctx context.Context, ch chan<- api.StreamEvent, evt api.StreamEvent) bool {
	select {
	case ch <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
