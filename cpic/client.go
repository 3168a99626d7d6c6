// Package cpic fetches pharmacogenomics reference tables from the CPIC REST
// API (https://api.cpicpgx.org/v1).
package cpic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giygas/cpic-brick/logging"
	"github.com/giygas/cpic-brick/metrics"
	"github.com/giygas/cpic-brick/table"
	"github.com/juju/ratelimit"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultBaseURL   = "https://api.cpicpgx.org/v1"
	DefaultUserAgent = "cpic-brick/1.0"
)

// HTTPError is returned when the API answers with a non-2xx status
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %s for url: %s", e.Status, e.URL)
}

// Client issues one GET per endpoint. It does not retry, paginate or
// authenticate.
type Client struct {
	baseURL    string
	httpClient *http.Client
	bucket     *ratelimit.Bucket
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the whole-request timeout, 0 means none
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit spaces requests to at most rps per second, 0 disables it
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.bucket = nil
			return
		}
		c.bucket = ratelimit.NewBucketWithRate(rps, 1)
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for baseURL. Requests go through an
// instrumented transport and carry no timeout unless WithTimeout is given.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: metrics.Transport(nil)},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the address fetched for ep
func (c *Client) URL(ep Endpoint) string {
	return c.baseURL + "/" + ep.Path
}

// Fetch downloads an endpoint and decodes its JSON array into records. The
// whole response is buffered in memory.
func (c *Client) Fetch(ctx context.Context, ep Endpoint) ([]table.Record, error) {
	logging.Info(fmt.Sprintf("Fetching %s...", ep.Name), "endpoint", ep.Name)

	if c.bucket != nil {
		c.bucket.Wait(1)
	}

	url := c.URL(ep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil, &HTTPError{URL: url, StatusCode: response.StatusCode, Status: response.Status}
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body of %s: %w", url, err)
	}

	bodyBytes, err = toUTF8(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body of %s: %w", url, err)
	}

	records, err := table.DecodeRecords(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	metrics.RecordsFetched.WithLabelValues(ep.Name).Add(float64(len(records)))
	logging.Info(fmt.Sprintf("Retrieved %d records", len(records)), "endpoint", ep.Name, "count", len(records))

	return records, nil
}

// toUTF8 passes UTF-8 through and decodes anything else as ISO-8859-1
func toUTF8(body []byte) ([]byte, error) {
	if utf8.Valid(body) {
		return body, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(body)
}
