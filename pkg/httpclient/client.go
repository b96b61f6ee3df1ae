// Package httpclient wraps resty behind the small surface the fetchers,
// crawler, inference capability and publishers need.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent mimics a desktop browser; several finance sites reject
// obvious bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Response is the subset of a resty response callers rely on.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client issues outbound HTTP calls. Every call is bounded by the client timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	PostJSON(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
}

type restyClient struct {
	rc *resty.Client
}

// Option customizes the resty client.
type Option func(*resty.Client)

// WithRetries enables resty's retry loop for transient failures.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(count).
			SetRetryWaitTime(wait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
			})
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *resty.Client) { c.SetHeader("User-Agent", ua) }
}

// NewRestyClient builds a Client with the given per-request timeout.
func NewRestyClient(timeout time.Duration, opts ...Option) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", DefaultUserAgent)
	for _, opt := range opts {
		opt(rc)
	}
	return &restyClient{rc: rc}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}

func (c *restyClient) PostJSON(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	return resp, nil
}
