package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
)

const (
	// ProviderName identifies this adapter in errors and logs.
	ProviderName = "deepseek"

	// DefaultTimeout is deliberately generous: completions over very
	// large contexts can legitimately take minutes.
	DefaultTimeout = 5 * time.Minute
)

// Config contains the settings for the upstream client.
type Config struct {
	// BaseURL is the API endpoint base URL, without a trailing slash.
	BaseURL string

	// APIKey is the upstream credential. May be empty; the request
	// handler refuses to dispatch without one.
	APIKey string

	// Timeout is the per-call timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// Client issues chat completion calls against the upstream provider.
// It is safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a new upstream client with connection pooling.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: ProviderName,
			Field:    "base_url",
			Message:  "base URL is required",
		}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}, nil
}

// HasAPIKey reports whether an upstream credential is configured.
func (c *Client) HasAPIKey() bool {
	return c.config.APIKey != ""
}

// CreateCompletion sends a non-streaming completion request for a single
// model attempt. A 200 returns the parsed response. Any other status is
// returned as a typed error carrying the upstream status and body.
func (c *Client) CreateCompletion(ctx context.Context, req *providers.CompletionRequest) (*ChatResponse, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: ProviderName,
			Cause:    fmt.Errorf("failed to read response body: %w", err),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &providers.ParseError{
			Provider:    ProviderName,
			RawResponse: string(body),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	return &chatResp, nil
}

// CreateCompletionStream sends a streaming completion request and returns
// the raw SSE body on success. The caller owns the returned reader and
// must close it.
func (c *Client) CreateCompletionStream(ctx context.Context, req *providers.CompletionRequest) (io.ReadCloser, error) {
	streamReq := *req
	streamReq.Stream = true

	resp, err := c.do(ctx, &streamReq, true)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// do performs one upstream call and classifies the outcome. On success the
// response is returned with its body unread; on failure the body has been
// consumed into the returned error and closed.
func (c *Client) do(ctx context.Context, req *providers.CompletionRequest, stream bool) (*http.Response, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, &providers.TimeoutError{
				Provider: ProviderName,
				Model:    req.Model,
				Timeout:  c.config.Timeout,
			}
		}
		return nil, &providers.ProviderError{
			Provider: ProviderName,
			Model:    req.Model,
			Cause:    err,
		}
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &providers.RateLimitError{
			Provider:   ProviderName,
			Model:      req.Model,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(errorBody),
		}
	}

	return nil, &providers.ProviderError{
		Provider:   ProviderName,
		Model:      req.Model,
		StatusCode: resp.StatusCode,
		Body:       string(errorBody),
	}
}

// isTimeout reports whether the transport error is a timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
