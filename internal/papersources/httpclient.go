package papersources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ErrRetriesExhausted is returned by HTTPClient.Do when every attempt within
// the retry budget failed with a retryable condition. Adapters wrap it into
// a domain.SourceUnavailableError so callers can degrade gracefully.
var ErrRetriesExhausted = errors.New("retry budget exhausted")

// RetryError records how a request failed after its retry budget ran out.
type RetryError struct {
	// Attempts is the total number of attempts made.
	Attempts int

	// LastStatus is the HTTP status of the final attempt, or zero when the
	// final attempt failed before a response was received.
	LastStatus int

	// Cause is the transport error of the final attempt, if any.
	Cause error
}

func (e *RetryError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("retry budget exhausted after %d attempts, last status %d", e.Attempts, e.LastStatus)
	}
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetryError) Unwrap() error { return ErrRetriesExhausted }

// HTTPClientConfig configures the shared retrying HTTP client.
type HTTPClientConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RateLimit is the sustained request rate per second.
	RateLimit float64

	// BurstSize is the maximum request burst.
	BurstSize int

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// RetryDelay is the base backoff unit. The wait before attempt n is
	// RetryDelay * n, so delays grow linearly.
	RetryDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// HTTPClient wraps http.Client with rate limiting and linear-backoff retries.
// It retries on 429, 5xx and transport timeouts; any other failure is
// returned immediately. Safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// NewHTTPClient creates a client, filling zero fields with defaults.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 10
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Helixir-LiteratureSearch/1.0"
	}

	return &HTTPClient{
		client:      &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Do executes a request, waiting on the rate limiter before each attempt.
// Retryable failures (429, 5xx, timeouts) consume the retry budget with a
// linearly growing delay between attempts; when the budget runs out a
// *RetryError wrapping ErrRetriesExhausted is returned. Non-retryable
// failures and context cancellation fail fast.
//
// The request body is not preserved across retries; callers that need a
// resendable body must set GetBody.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	attempts := c.config.MaxRetries + 1
	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.rateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		var retryAfter time.Duration
		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if !isTimeout(err) {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			lastStatus = 0
		} else if retryableStatus(resp.StatusCode) {
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			drainBody(resp)
			lastErr = nil
			lastStatus = resp.StatusCode
		} else {
			return resp, nil
		}

		if attempt == attempts {
			break
		}
		if err := c.backoff(req.Context(), attempt, retryAfter); err != nil {
			return nil, err
		}
		if err := resetRequestBody(req); err != nil {
			return nil, fmt.Errorf("cannot retry request: %w", err)
		}
	}

	return nil, &RetryError{Attempts: attempts, LastStatus: lastStatus, Cause: lastErr}
}

// backoff sleeps for RetryDelay multiplied by the attempt number, honoring
// context cancellation. A server-provided Retry-After overrides the linear
// delay when it is longer.
func (c *HTTPClient) backoff(ctx context.Context, attempt int, retryAfter time.Duration) error {
	delay := c.config.RetryDelay * time.Duration(attempt)
	if retryAfter > delay {
		delay = retryAfter
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. Unparseable values are ignored.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// retryableStatus reports whether a status code is worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// isTimeout reports whether err is a transport-level timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// drainBody discards and closes a response body so the connection can be
// reused across retries.
func drainBody(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func resetRequestBody(req *http.Request) error {
	if req.Body == nil || req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("get request body: %w", err)
	}
	req.Body = body
	return nil
}
