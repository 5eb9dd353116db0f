// Package coordinator turns query states into page requests and reconciles
// overlapping responses so that only the most recently issued request can
// update the published result.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/query"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrEmptyResponse is reported when a fetcher returns neither a page nor an error.
	ErrEmptyResponse = errors.New("fetcher returned no page")
	// ErrUnsuccessfulResponse is reported for a page whose success flag is false.
	ErrUnsuccessfulResponse = errors.New("backend reported failure")
)

// Fetcher is the remote capability used to load one page.
type Fetcher interface {
	FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResponse, error)
}

// Completion is the outcome of one issued request, tagged with its generation.
type Completion struct {
	Generation uint64
	State      query.State
	Response   *models.PageResponse
	Err        error
	Elapsed    time.Duration
}

// Options configures a Coordinator.
type Options struct {
	// Publish receives every new Result. Called on the owner's goroutine as
	// the last step of OnStateChange and Resolve, so it may call OnStateChange.
	Publish func(Result)

	// Post hands a Completion back to the owner, which must later pass it to
	// Resolve on the same goroutine that calls OnStateChange.
	Post func(Completion)

	// CacheSize enables an LRU of ready results keyed by state fingerprint.
	CacheSize int
	Metrics   *Metrics
}

// Coordinator is not safe for concurrent use: OnStateChange and Resolve
// must be called from a single goroutine. Only the fetches themselves run
// elsewhere, and they report back through Options.Post.
type Coordinator struct {
	fetcher Fetcher
	publish func(Result)
	post    func(Completion)
	cache   *lru.Cache[string, Result]
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc

	generation uint64
	issued     query.State
	hasIssued  bool
	result     Result
}

// New builds a coordinator around fetcher.
func New(fetcher Fetcher, opts Options) (*Coordinator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if opts.Post == nil {
		return nil, fmt.Errorf("post callback is required")
	}

	c := &Coordinator{
		fetcher: fetcher,
		publish: opts.Publish,
		post:    opts.Post,
		metrics: opts.Metrics,
		ctx:     context.Background(),
		result:  EmptyResult(),
	}
	if c.publish == nil {
		c.publish = func(Result) {}
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, Result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// SetContext sets the parent context of future fetches.
func (c *Coordinator) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
}

// Result returns the currently published result.
func (c *Coordinator) Result() Result {
	return c.result
}

// Generation returns the generation of the latest issued request.
func (c *Coordinator) Generation() uint64 {
	return c.generation
}

// OnStateChange issues a request for state unless it equals the state of the
// last issued request. It reports whether a new generation started.
func (c *Coordinator) OnStateChange(state query.State) bool {
	if c.hasIssued && state.Equal(c.issued) {
		c.metrics.IncSkipped()
		slog.Debug("state unchanged, skipping fetch", slog.String("query", state.Fingerprint()))
		return false
	}

	c.issued = state
	c.hasIssued = true
	c.generation++
	gen := c.generation
	c.cancelInFlight()

	if c.cache != nil {
		if cached, ok := c.cache.Get(state.Fingerprint()); ok {
			cached.Generation = gen
			c.result = cached
			c.metrics.IncCacheHit()
			slog.Debug("page served from cache",
				slog.Uint64("generation", gen),
				slog.String("query", state.Fingerprint()),
			)
			c.publish(c.result)
			return true
		}
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	req := query.Serialize(state)
	c.metrics.IncIssued()

	slog.Debug("issuing page fetch",
		slog.Uint64("generation", gen),
		slog.String("query", req.Encode()),
	)

	go func() {
		start := time.Now()
		resp, err := c.fetcher.FetchPage(ctx, req)
		c.post(Completion{
			Generation: gen,
			State:      state,
			Response:   resp,
			Err:        err,
			Elapsed:    time.Since(start),
		})
	}()

	c.result.Status = StatusLoading
	c.result.Err = nil
	c.publish(c.result)
	return true
}

// Resolve applies a completion if it belongs to the latest issued request and
// publishes the new result. Completions of superseded requests are dropped.
func (c *Coordinator) Resolve(done Completion) bool {
	if done.Generation != c.generation {
		c.metrics.IncResponse("stale")
		slog.Debug("discarding stale response",
			slog.Uint64("generation", done.Generation),
			slog.Uint64("latest", c.generation),
		)
		return false
	}
	c.cancelInFlight()

	err := done.Err
	switch {
	case err != nil:
	case done.Response == nil:
		err = ErrEmptyResponse
	case !done.Response.Success && done.Response.Message != "":
		err = fmt.Errorf("%w: %s", ErrUnsuccessfulResponse, done.Response.Message)
	case !done.Response.Success:
		err = ErrUnsuccessfulResponse
	}

	if err != nil {
		c.result = Result{
			Items:      slices.Clone(c.result.Items),
			TotalPages: max(c.result.TotalPages, 1),
			Status:     StatusFailed,
			ForQuery:   done.State,
			Generation: done.Generation,
			Err:        err,
		}
		c.metrics.IncResponse("failed")
		slog.Warn("page fetch failed",
			slog.Uint64("generation", done.Generation),
			slog.String("query", done.State.Fingerprint()),
			slog.Duration("elapsed", done.Elapsed),
			slog.Any("error", err),
		)
		c.publish(c.result)
		return true
	}

	c.result = Result{
		Items:      done.Response.Data,
		TotalPages: max(done.Response.TotalPages, 1),
		Status:     StatusReady,
		ForQuery:   done.State,
		Generation: done.Generation,
	}
	if c.cache != nil {
		c.cache.Add(done.State.Fingerprint(), c.result)
	}
	c.metrics.IncResponse("ready")
	c.metrics.ObserveLatency(done.Elapsed)
	slog.Debug("page ready",
		slog.Uint64("generation", done.Generation),
		slog.Int("items", len(c.result.Items)),
		slog.Int("total_pages", c.result.TotalPages),
		slog.Duration("elapsed", done.Elapsed),
	)
	c.publish(c.result)
	return true
}

// Close cancels the in-flight request, if any.
func (c *Coordinator) Close() {
	c.cancelInFlight()
}

func (c *Coordinator) cancelInFlight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
