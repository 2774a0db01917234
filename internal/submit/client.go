package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/segment"
	"github.com/muurk/segmentform/internal/version"
)

const (
	// DefaultEndpoint is used when no endpoint is configured: a local segment-sink
	DefaultEndpoint = "http://localhost:8080/segments"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries the per-submission identifier
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody caps how much of a failed response is kept in the error
	maxErrorBody = 512
)

// Submitter sends a segment to a remote endpoint.
type Submitter interface {
	Submit(ctx context.Context, seg segment.Segment) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, seg segment.Segment) error

// Submit calls the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, seg segment.Segment) error {
	return fn(ctx, seg)
}

// Client posts segments as JSON to an HTTP endpoint.
type Client struct {
	// Endpoint is the full URL segments are POSTed to
	Endpoint string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent with every request
	UserAgent string

	// NewRequestID generates the X-Request-ID value (defaults to uuid v4)
	NewRequestID func() string
}

// NewClient creates a submission client for endpoint.
// An empty endpoint falls back to DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:     endpoint,
		HTTPClient:   &http.Client{Timeout: DefaultTimeout},
		UserAgent:    version.UserAgent(),
		NewRequestID: uuid.NewString,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Submit makes a single POST attempt with the segment's wire payload.
// Any 2xx status is success; everything else is a *TransportError.
func (c *Client) Submit(ctx context.Context, seg segment.Segment) error {
	start := time.Now()
	requestID := c.requestID()

	err := c.post(ctx, seg, requestID)
	logging.LogSubmission(c.Endpoint, requestID, seg.Name, len(seg.Fields), time.Since(start), err)

	return err
}

func (c *Client) post(ctx context.Context, seg segment.Segment, requestID string) error {
	body, err := json.Marshal(seg)
	if err != nil {
		return NewEncodeError("failed to encode segment", c.Endpoint, err)
	}
	logging.LogPayload("Submitting segment payload", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return NewEncodeError("failed to create POST request", c.Endpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return NewNetworkError("POST request failed", c.Endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return NewHTTPError(c.Endpoint, resp.StatusCode, string(excerpt))
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) requestID() string {
	if c.NewRequestID == nil {
		return uuid.NewString()
	}
	return c.NewRequestID()
}
