package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/retry"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 1 << 10
)

// An APIError is a non-2xx answer of the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == domain.ErrUpstream
}

func (e *APIError) temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

type Config struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit is requests per second, zero means unlimited.
	RateLimit float64

	// Retries is the number of extra attempts after a failed request.
	Retries int
}

type ClientOpt func(*Client)

// TokenOpt makes the client send "Authorization: Bearer <token>"
// whenever fn returns a non-empty token.
func TokenOpt(fn func() string) ClientOpt {
	return func(c *Client) {
		c.token = fn
	}
}

func HTTPClientOpt(hc *http.Client) ClientOpt {
	return func(c *Client) {
		c.hc = hc
	}
}

// Client is a JSON client shared by the remote API adapters.
type Client struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	retry   retry.RetryConfig
	token   func() string
}

func NewClient(cfg Config, opts ...ClientOpt) (*Client, error) {
	const op = "restapi.NewClient"

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base url is empty", op)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		retry: retry.RetryConfig{
			MaxAttempts: cfg.Retries + 1,
			Backoff:     retry.ExponentialBackoff(50 * time.Millisecond),
			ShouldRetry: shouldRetry,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.temporary()
	}
	var decodeErr *decodeError
	return !errors.As(err, &decodeErr)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// getJSON decodes the body of GET path into out. It reports
// empty=true when the API answered 2xx with no body.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, path, body, out)
	return err
}

// do runs the request with retries. Failures other than cancellation
// match [domain.ErrUpstream].
func (c *Client) do(
	ctx context.Context, method, path string, body []byte, out any,
) (bool, error) {
	log := slog.With("op", "Client.do", "method", method, "path", path)

	empty, err := retry.DoWithResult(ctx, c.retry, func() (bool, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
		empty, err := c.roundTrip(ctx, method, path, body, out)
		if err != nil {
			log.Debug("request failed", "err", err)
		}
		return empty, err
	})
	if err == nil || ctx.Err() != nil || errors.Is(err, domain.ErrUpstream) {
		return empty, err
	}
	return empty, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
}

func (c *Client) roundTrip(
	ctx context.Context, method, path string, body []byte, out any,
) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return false, &APIError{
			Status:  res.StatusCode,
			Message: strings.TrimSpace(string(msg)),
		}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return false, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return true, nil
	}
	if out == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, &decodeError{err}
	}
	return false, nil
}
