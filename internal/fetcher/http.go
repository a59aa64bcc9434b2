// Package fetcher implements the retry-aware HTTP clients for the GOV.UK
// content API and binary attachment downloads.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
)

// Options configures the HTTP client.
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// Delay is the fixed courtesy pause taken before every request, on top
	// of the per-host rate limiters.
	Delay time.Duration

	RateLimiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns the default per-host rate limiters.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"www.gov.uk":                       rate.NewLimiter(10, 10),
		"assets.publishing.service.gov.uk": rate.NewLimiter(5, 5),
	}
}

// Client wraps net/http with courtesy delays, per-host rate limiting, and
// the fetch error taxonomy (not-found, rate-limited, transient). It performs
// a single attempt per call; retry policy lives in resilience.
type Client struct {
	client   *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "tribunal-cli/1.0"
	}
	limiters := opts.RateLimiters
	if limiters == nil {
		limiters = DefaultRateLimiters()
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
	}
}

func (c *Client) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(20, 20)
	}
	if lim, ok := c.limiters[u.Host]; ok {
		return lim
	}
	return rate.NewLimiter(20, 20)
}

// do performs one request attempt and classifies the outcome.
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.opts.Delay > 0 {
		timer := time.NewTimer(c.opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrap(ctx.Err(), "fetcher: courtesy delay")
		case <-timer.C:
		}
	}

	if err := c.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "fetcher: get %s", rawURL), 0)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, &resilience.NotFoundError{URL: rawURL}
	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, &resilience.RateLimitedError{URL: rawURL}
	case resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, resilience.NewTransientError(
			eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL),
			resp.StatusCode,
		)
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return resp, nil
}

// GetJSON fetches rawURL and decodes the response body into v. A body that
// fails to decode is treated as transient: GOV.UK intermittently serves
// truncated payloads under load.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resilience.NewTransientError(eris.Wrapf(err, "fetcher: decode %s", rawURL), 0)
	}
	return nil
}

// DownloadToFile streams rawURL to dest, creating parent directories as
// needed. The body lands in a private temp file renamed over dest, so a
// partial or concurrent download never leaves a torn file behind. Returns
// bytes written.
func (c *Client) DownloadToFile(ctx context.Context, rawURL, dest string) (int64, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, eris.Wrap(err, "fetcher: create pdf dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp*")
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create temp file")
	}

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return n, resilience.NewTransientError(eris.Wrapf(err, "fetcher: write %s", dest), 0)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return n, eris.Wrap(err, "fetcher: finalize download")
	}
	return n, nil
}
