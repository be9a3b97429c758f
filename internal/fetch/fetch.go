package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Fetcher performs a single anonymous GET and returns the response body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func NewClient(timeout time.Duration, userAgent string, logger *slog.Logger) *Client {
	http := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "it-IT,it;q=0.9,en;q=0.8")

	return &Client{
		http:   http,
		logger: logger,
	}
}

func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	c.logger.Debug("http get", "url", url, "status", res.StatusCode(), "duration", time.Since(start))

	if res.IsError() {
		return nil, fmt.Errorf("%w %d for %s", ErrHTTPStatus, res.StatusCode(), url)
	}

	return res.Body(), nil
}
