package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/n0madic/go-responses-adapter/wire"
)

// strippableParams are request parameters some deployments reject as
// unsupported. They are removed and the request retried once per parameter,
// in order.
var strippableParams = []string{"store", "service_tier"}

func stripParam(req *wire.Request, param string) bool {
	switch param {
	case "store":
		if req.Store == nil {
			return false
		}
		req.Store = nil
		return true
	case "service_tier":
		if req.ServiceTier == "" {
			return false
		}
		req.ServiceTier = ""
		return true
	}
	return false
}

func (c *Client) retryUnsupported(err error, req *wire.Request) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, param := range strippableParams {
		if apiErr.IsUnsupportedParameter(param) && stripParam(req, param) {
			if c.verbose {
				slog.Warn("upstream rejected parameter; retrying without it", "param", param)
			}
			return true
		}
	}
	return false
}

// CreateWithRetry is Create plus a retry pass that strips parameters the
// vendor rejects as unsupported.
func (c *Client) CreateWithRetry(ctx context.Context, req *wire.Request) (*wire.Document, error) {
	for {
		doc, err := c.Create(ctx, req)
		if err == nil {
			return doc, nil
		}
		if !c.retryUnsupported(err, req) {
			return nil, err
		}
	}
}

// StreamWithRetry is Stream plus the same strip-and-retry pass.
func (c *Client) StreamWithRetry(ctx context.Context, req *wire.Request) (io.ReadCloser, error) {
	for {
		body, err := c.Stream(ctx, req)
		if err == nil {
			return body, nil
		}
		if !c.retryUnsupported(err, req) {
			return nil, err
		}
	}
}
