package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// RateLimitedClient wraps http.Client with rate limiting and retries
type RateLimitedClient struct {
	client      *http.Client
	rateLimiter *rateLimiter
	maxRetries  int
	backoffUnit time.Duration
}

type rateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	// Token bucket: 60 req/min refills one token every second, bursting 10 seconds worth
	burst := max(requestsPerMinute/6, 1)
	return &rateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: time.Minute / time.Duration(requestsPerMinute),
		lastRefill: time.Now(),
	}
}

func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		rl.mu.Lock()

		now := time.Now()
		elapsed := now.Sub(rl.lastRefill)
		tokensToAdd := int(elapsed / rl.refillRate)
		if tokensToAdd > 0 {
			rl.tokens = min(rl.tokens+tokensToAdd, rl.maxTokens)
			rl.lastRefill = now
		}

		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}

		waitTime := rl.refillRate
		rl.mu.Unlock()
		if err := sleep(ctx, waitTime); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewRateLimitedClient creates a client limited to requestsPerMinute
func NewRateLimitedClient(requestsPerMinute int, timeout time.Duration, maxRetries int) *RateLimitedClient {
	return &RateLimitedClient{
		client: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: newRateLimiter(requestsPerMinute),
		maxRetries:  maxRetries,
		backoffUnit: 100 * time.Millisecond,
	}
}

// Do executes an HTTP request with rate limiting and retries.
// Transport errors, 429s and 5xx responses are retried with exponential backoff.
func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return nil, err
		}

		backoff := time.Duration(1<<attempt) * c.backoffUnit

		resp, err := c.client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (429)")
			backoff *= 10
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		default:
			return resp, nil
		}

		if attempt < c.maxRetries {
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Get performs a rate-limited GET request and returns the body
func (c *RateLimitedClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
