// Package fetch retrieves search-result pages over HTTP via Colly.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls the fetch client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// Retries is the number of extra attempts after the first failure.
	// Delay between attempts is fixed; the source site rate-limits by IP,
	// and a short constant pause recovers from transient errors just as
	// well as backoff for a run this small.
	Retries    int
	RetryDelay time.Duration
}

// Client fetches pages with a cloned Colly collector per request.
type Client struct {
	base   *colly.Collector
	cfg    Config
	logger *zap.Logger
}

// New constructs a fetch client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, errors.New("fetch.user_agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &Client{base: base, cfg: cfg, logger: logger}, nil
}

// Fetch retrieves one URL and returns the HTML body. After the configured
// retries are exhausted it returns ("", err); callers treat the empty body
// as "page unavailable" and move on, they never distinguish a network
// failure from an empty response.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 0 {
			c.logger.Warn("retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		body, err := c.fetchOnce(rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *Client) fetchOnce(rawURL string) (string, error) {
	collector := c.base.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: string(r.Body)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return "", err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		if res.body == "" {
			return "", errors.New("empty response body")
		}
		return res.body, nil
	default:
		return "", errors.New("fetch produced no result")
	}
}

type fetchResult struct {
	body string
	err  error
}
