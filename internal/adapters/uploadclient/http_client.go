// Package uploadclient implements ports.UploadClient against the remote
// store's HTTP ingest endpoint. Instrumented with the same otelhttp
// transport the control plane uses for its inbound spans, so an upload
// batch's span connects to the remote store's trace if it propagates
// one back.
package uploadclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPClient posts batches to a fixed endpoint as application/json.
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient builds a client posting to endpoint with a bounded
// per-request timeout.
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
}

// Upload POSTs batch to the configured endpoint. A non-2xx response is
// reported as an error so the uploader's retry policy applies.
func (c *HTTPClient) Upload(ctx context.Context, batch []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(batch))
	if err != nil {
		return fmt.Errorf("uploadclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("uploadclient: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("uploadclient: remote store returned %s", resp.Status)
	}
	return nil
}
