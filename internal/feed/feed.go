package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bet-tracker/internal/odds"
)

const linesKey = "lines"

// Line is one quoted price from the upstream odds feed
type Line struct {
	EventID    string        `json:"event_id"`
	Event      string        `json:"event"`
	Selection  string        `json:"selection"`
	Sportsbook string        `json:"sportsbook"`
	Odds       odds.American `json:"odds"`
	UpdatedAt  string        `json:"updated_at,omitempty"`
}

// LinesResponse is the feed payload
type LinesResponse struct {
	Data []Line `json:"data"`
}

// Getter fetches a URL body
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// Client reads lines from the upstream feed through a cache
type Client struct {
	url    string
	apiKey string
	http   Getter
	cache  Cache
	ttl    time.Duration
	log    *zap.Logger
}

// NewClient creates a feed client. A zero ttl disables caching.
func NewClient(url, apiKey string, http Getter, cache Cache, ttl time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		http:   http,
		cache:  cache,
		ttl:    ttl,
		log:    log,
	}
}

// Lines returns the current lines, from cache when fresh.
// Cache failures are logged and fall through to the upstream.
func (c *Client) Lines(ctx context.Context) ([]Line, error) {
	if c.ttl > 0 {
		body, ok, err := c.cache.Get(ctx, linesKey)
		if err != nil {
			c.log.Warn("feed cache read failed", zap.Error(err))
		}
		if ok {
			lines, err := decodeLines(body)
			if err == nil {
				return lines, nil
			}
			c.log.Warn("discarding bad cached feed payload", zap.Error(err))
		}
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["Authorization"] = c.apiKey
	}

	body, err := c.http.Get(ctx, c.url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetching lines: %w", err)
	}

	lines, err := decodeLines(body)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		if err := c.cache.Set(ctx, linesKey, body, c.ttl); err != nil {
			c.log.Warn("feed cache write failed", zap.Error(err))
		}
	}

	c.log.Debug("fetched feed lines", zap.Int("count", len(lines)))
	return lines, nil
}

func decodeLines(body []byte) ([]Line, error) {
	var resp LinesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding lines: %w", err)
	}
	return resp.Data, nil
}
