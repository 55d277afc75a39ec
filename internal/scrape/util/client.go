package util

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobalert/internal/logger"
	"jobalert/internal/retry"
	"jobalert/internal/scrape/types"
)

const maxBodyBytes = 8 << 20

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	Code       int
	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
}

func (e *StatusError) RetryAfter() time.Duration { return e.retryAfter }

// Temporary reports whether the status is worth another attempt: rate
// limiting and server errors. Other 4xx are final.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type ClientOptions struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	UserAgent   string
	Limiter     *HostLimiter
	Transport   http.RoundTripper
	Logger      logger.Logger
}

// Client is the HTTP client every adapter shares. Each request is bounded
// by Timeout, waits on the host limiter, and is retried with linear backoff
// on network errors, 429 and 5xx.
type Client struct {
	hc      *http.Client
	limiter *HostLimiter
	ua      string
	retry   retry.Config
	log     logger.Logger
}

func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "jobalert/1.0"
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	c := &Client{
		hc:      &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		limiter: opts.Limiter,
		ua:      opts.UserAgent,
		log:     opts.Logger,
	}
	c.retry = retry.Config{
		MaxAttempts: opts.MaxAttempts,
		Delay:       opts.Backoff,
		MaxDelay:    opts.MaxBackoff,
		IsRetryable: IsRetryable,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			c.log.Debug("http retry",
				logger.Int("attempt", attempt),
				logger.Duration("wait", wait),
				logger.Error(err))
		},
	}
	return c
}

// WithJar returns a client sharing limiter and retry policy whose requests
// keep cookies in jar. Workday boards need a per-board session.
func (c *Client) WithJar(jar http.CookieJar) *Client {
	cp := *c
	hc := *c.hc
	hc.Jar = jar
	cp.hc = &hc
	return &cp
}

// IsRetryable is true for transport failures (timeouts included) and
// temporary statuses. An expired run deadline stops retry.Do on its own.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		return req, nil
	})
}

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	b, err := c.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", types.ErrMalformed, url, err)
	}
	return nil
}

// PostJSON sends body as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	b, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", types.ErrMalformed, url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, c.retry, func(int) error {
		req, err := build()
		if err != nil {
			return err
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.ua)
		}

		if c.limiter != nil {
			if err := c.limiter.WaitURL(ctx, req.URL.String()); err != nil {
				return err
			}
		}

		res, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
			return &StatusError{
				Method:     req.Method,
				URL:        req.URL.String(),
				Code:       res.StatusCode,
				retryAfter: parseRetryAfter(res.Header.Get("Retry-After")),
			}
		}

		b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// parseRetryAfter understands the delta-seconds form only.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
