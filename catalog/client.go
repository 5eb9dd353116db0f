// Package catalog implements the fetch capability against the product list
// endpoint using a colly collector.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-catalog-browser/config"
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/parser"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Client fetches pages of products. It is safe for concurrent use; every
// call runs on a clone of the base collector so callbacks never mix between
// requests while the HTTP backend and rate limits stay shared.
type Client struct {
	cfg       *config.Config
	endpoint  *url.URL
	collector *colly.Collector
	Metrics   *Metrics

	requestCount int64
	errorCount   int64
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint: %w", err)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(endpoint.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	return &Client{
		cfg:       cfg,
		endpoint:  endpoint,
		collector: collector,
		Metrics:   NewMetrics(),
	}, nil
}

// WithTransport swaps the HTTP transport of the underlying collector.
func (c *Client) WithTransport(transport http.RoundTripper) {
	c.collector.WithTransport(transport)
}

// PageURL returns the absolute URL requested for req.
func (c *Client) PageURL(req models.PageRequest) string {
	u := *c.endpoint
	u.RawQuery = req.Encode()
	return u.String()
}

// FetchPage issues one GET for req and decodes the body. When ctx ends first
// the call returns ctx.Err() and the response, if any, is dropped.
func (c *Client) FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := c.PageURL(req)
	requestID := uuid.NewString()

	var (
		body     []byte
		fetchErr error
	)

	collector := c.collector.Clone()
	collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		current := atomic.AddInt64(&c.requestCount, 1)
		c.Metrics.IncRequest("started")
		slog.Debug("catalog request",
			slog.String("request_id", requestID),
			slog.Int64("requests", current),
			slog.String("url", r.URL.String()),
		)
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		c.Metrics.IncRequest("completed")
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			c.Metrics.ObserveDuration(time.Since(start))
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		atomic.AddInt64(&c.errorCount, 1)
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = classifyError(err, statusCode)
		category := ErrorType(fetchErr)
		c.Metrics.IncError(category)

		slog.Error("catalog request error",
			slog.String("request_id", requestID),
			slog.String("url", target),
			slog.Int("status", statusCode),
			slog.String("category", category),
			slog.Any("error", err),
		)
	})

	headers := http.Header{}
	headers.Set("User-Agent", c.cfg.UserAgent)
	headers.Set("Accept", "application/json")
	headers.Set(requestIDHeader, requestID)

	done := make(chan error, 1)
	go func() {
		done <- collector.Request(http.MethodGet, target, nil, nil, headers)
	}()

	var err error
	select {
	case <-ctx.Done():
		c.Metrics.IncRequest("abandoned")
		return nil, ctx.Err()
	case err = <-done:
	}

	if fetchErr != nil {
		return nil, fmt.Errorf("fetch page %d: %w", req.Page, fetchErr)
	}
	if err != nil {
		c.Metrics.IncError("other")
		return nil, fmt.Errorf("fetch page %d: %w", req.Page, err)
	}

	page, err := parser.DecodePage(body)
	if err != nil {
		label := "malformed"
		if errors.Is(err, parser.ErrUnsuccessful) {
			label = "unsuccessful"
		}
		c.Metrics.IncError(label)
		slog.Warn("catalog response rejected",
			slog.String("request_id", requestID),
			slog.String("url", target),
			slog.String("category", label),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("decode page %d: %w", req.Page, err)
	}

	c.Metrics.AddItems(len(page.Data))
	return page, nil
}

// Stats reports the number of requests issued and failed so far.
func (c *Client) Stats() (requests, failures int) {
	return int(atomic.LoadInt64(&c.requestCount)), int(atomic.LoadInt64(&c.errorCount))
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch {
		case statusCode == http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case statusCode == http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case statusCode == http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		case statusCode >= http.StatusInternalServerError:
			return ErrServer{Status: statusCode, Err: wrapped}
		case statusCode >= http.StatusBadRequest:
			return ErrStatus{Status: statusCode, Err: wrapped}
		}
	}

	if err == nil {
		return fmt.Errorf("unexpected status %d", statusCode)
	}
	return err
}
