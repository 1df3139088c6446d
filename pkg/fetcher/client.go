package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"tweetscraper/pkg/config"
	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/report"
	"tweetscraper/pkg/twitter"
	"tweetscraper/pkg/workload"
)

// DefaultMaxRedirects applies when the configured cap is not positive.
// Suspended accounts are only recognised by following their redirect.
const DefaultMaxRedirects = 10

// Client fetches tweet pages and media files
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	cookies      []*http.Cookie
	timeout      time.Duration
	suspendedURL string
	reporter     report.Reporter
	logger       logger.Logger
}

// NewClient creates a client from the fetch and session settings
func NewClient(fetch config.FetchConfig, session config.TwitterConfig, reporter report.Reporter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if reporter == nil {
		reporter = report.NewMemoryReporter()
	}

	timeout := fetch.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxRedirects := fetch.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		headers: map[string]string{
			"User-Agent":      fetch.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
		timeout:      timeout,
		suspendedURL: fetch.SuspendedURL,
		reporter:     reporter,
		logger:       log,
	}
	if c.suspendedURL == "" {
		c.suspendedURL = config.SuspendedURL
	}

	if session.AuthToken != "" {
		c.cookies = append(c.cookies, &http.Cookie{Name: "auth_token", Value: session.AuthToken})
	}
	if session.CT0 != "" {
		c.cookies = append(c.cookies, &http.Cookie{Name: "ct0", Value: session.CT0})
		c.headers["x-csrf-token"] = session.CT0
	}

	return c
}

// SetHeader sets a custom header sent with page requests
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *Client) newRequest(ctx context.Context, method, url string, withSession bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if withSession {
		for _, cookie := range c.cookies {
			req.AddCookie(cookie)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request failed")
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})
	return resp, nil
}

// FetchBatch fetches every item concurrently and waits for all of them.
// Outcomes are returned in item order.
func (c *Client) FetchBatch(ctx context.Context, items []workload.WorkItem) []Outcome {
	return c.batch(ctx, items, c.Fetch)
}

// ResolveBatch resolves every item concurrently with HEAD requests
func (c *Client) ResolveBatch(ctx context.Context, items []workload.WorkItem) []Outcome {
	return c.batch(ctx, items, c.Resolve)
}

func (c *Client) batch(ctx context.Context, items []workload.WorkItem, fn func(context.Context, workload.WorkItem) Outcome) []Outcome {
	outcomes := make([]Outcome, len(items))

	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			outcomes[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Fetch retrieves one tweet page and classifies the result
func (c *Client) Fetch(ctx context.Context, item workload.WorkItem) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := Outcome{Item: item}

	req, err := c.newRequest(ctx, http.MethodGet, item.Link, true)
	if err != nil {
		return c.transportError(out, errs.Wrap(errs.ErrorTypeNetwork, err, "invalid tweet link"))
	}

	resp, err := c.do(req)
	if err != nil {
		return c.transportError(out, err)
	}
	defer resp.Body.Close()

	out.Status = resp.StatusCode
	out.ResolvedURL = resp.Request.URL.String()

	if twitter.IsSuspended(out.ResolvedURL, c.suspendedURL) {
		out.Kind = Redirected
		out.Err = errs.New(errs.ErrorTypeRedirected, "account suspended")
		if err := c.reporter.Suspended(item.Link); err != nil {
			c.logger.WithError(err).Warn("failed to record suspended tweet")
		}
		c.logger.InfoWithFields("tweet redirected to suspended page", map[string]interface{}{
			"link": item.Link,
		})
		return out
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Kind = HTTPFailure
		out.Err = errs.HTTPStatus(resp.StatusCode, item.Link)
		if err := c.reporter.Failed(resp.StatusCode, item.Link); err != nil {
			c.logger.WithError(err).Warn("failed to record failed tweet")
		}
		c.logger.WarnWithFields("tweet fetch failed", map[string]interface{}{
			"link":   item.Link,
			"status": resp.StatusCode,
		})
		return out
	}

	body, err := readBody(resp)
	if err != nil {
		return c.transportError(out, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read body"))
	}
	if len(body) == 0 {
		out.Kind = Empty
		return out
	}

	out.Kind = Success
	out.Body = body
	return out
}

// Resolve follows the redirects of a tweet link without reading a body.
// The status code is recorded but does not affect the outcome.
func (c *Client) Resolve(ctx context.Context, item workload.WorkItem) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := Outcome{Item: item}

	req, err := c.newRequest(ctx, http.MethodHead, item.Link, true)
	if err != nil {
		return c.transportError(out, errs.Wrap(errs.ErrorTypeNetwork, err, "invalid tweet link"))
	}

	resp, err := c.do(req)
	if err != nil {
		return c.transportError(out, err)
	}
	resp.Body.Close()

	out.Status = resp.StatusCode
	out.ResolvedURL = resp.Request.URL.String()
	out.Kind = Success
	if twitter.IsSuspended(out.ResolvedURL, c.suspendedURL) {
		out.Kind = Redirected
	}
	return out
}

func (c *Client) transportError(out Outcome, err error) Outcome {
	out.Kind = TransportError
	out.Err = err
	c.logger.WarnWithFields("tweet fetch transport error", map[string]interface{}{
		"link":  out.Item.Link,
		"error": err.Error(),
	})
	return out
}

// Get downloads a media file. The caller closes the returned body.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, false)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeDownload, err, "invalid media url")
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errs.HTTPStatus(resp.StatusCode, url)
	}
	return resp.Body, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		r = resp.Body
	}
	return io.ReadAll(r)
}
