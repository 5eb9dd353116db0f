// Package controller runs the list-query event loop: user actions and fetch
// completions are handled on one goroutine that owns the query state and the
// published result.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/aluiziolira/go-catalog-browser/coordinator"
	"github.com/aluiziolira/go-catalog-browser/presenter"
	"github.com/aluiziolira/go-catalog-browser/query"
)

var (
	// ErrControllerStopped is returned by calls made after Run returned.
	ErrControllerStopped = errors.New("controller stopped")
	errAlreadyRunning    = errors.New("controller already running")
)

const defaultEventBuffer = 16

// Options configures a Controller.
type Options struct {
	// Render receives every new view on the loop goroutine. It must not call
	// back into the controller synchronously.
	Render func(presenter.View)

	PageSizes       []int
	DefaultPageSize int
	CacheSize       int
	Metrics         *coordinator.Metrics
	EventBuffer     int
}

type eventKind int

const (
	eventAction eventKind = iota
	eventSnapshot
	eventSettled
)

type event struct {
	kind   eventKind
	action query.Action
	reply  chan presenter.View
}

// Controller owns one QueryState and one Result.
type Controller struct {
	reducer *query.Reducer
	coord   *coordinator.Coordinator
	render  func(presenter.View)

	events      chan event
	completions chan coordinator.Completion
	done        chan struct{}
	running     atomic.Bool

	// loop-owned
	state   query.State
	result  coordinator.Result
	waiters []chan presenter.View
}

// New builds a controller fetching through fetcher. Call Run to start it.
func New(fetcher coordinator.Fetcher, opts Options) (*Controller, error) {
	reducer := query.NewReducer(opts.PageSizes)

	pageSize := opts.DefaultPageSize
	if pageSize == 0 {
		pageSize = query.DefaultPageSize
	}
	if !slices.Contains(reducer.PageSizes(), pageSize) {
		return nil, fmt.Errorf("default page size %d is not one of %v", pageSize, reducer.PageSizes())
	}

	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}

	c := &Controller{
		reducer:     reducer,
		render:      opts.Render,
		events:      make(chan event, buffer),
		completions: make(chan coordinator.Completion, buffer),
		done:        make(chan struct{}),
		state:       query.NewState(pageSize),
		result:      coordinator.EmptyResult(),
	}
	if c.render == nil {
		c.render = func(presenter.View) {}
	}

	coord, err := coordinator.New(fetcher, coordinator.Options{
		Publish:   c.publish,
		Post:      c.post,
		CacheSize: opts.CacheSize,
		Metrics:   opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	c.coord = coord
	return c, nil
}

// Run issues the initial fetch and processes events until ctx is done.
// A controller can only be run once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}
	defer close(c.done)
	defer c.coord.Close()

	c.coord.SetContext(ctx)
	slog.Info("controller started", slog.String("query", c.state.Fingerprint()))

	c.coord.OnStateChange(c.state)

	for {
		select {
		case <-ctx.Done():
			slog.Info("controller stopped",
				slog.Uint64("generation", c.coord.Generation()),
			)
			return nil
		case ev := <-c.events:
			c.handle(ev)
		case done := <-c.completions:
			c.coord.Resolve(done)
		}
	}
}

// Dispatch queues action for the loop.
func (c *Controller) Dispatch(ctx context.Context, action query.Action) error {
	return c.send(ctx, event{kind: eventAction, action: action})
}

// Apply queues action and returns the view right after it was reduced.
func (c *Controller) Apply(ctx context.Context, action query.Action) (presenter.View, error) {
	return c.roundTrip(ctx, event{kind: eventAction, action: action})
}

// Snapshot returns the current view.
func (c *Controller) Snapshot(ctx context.Context) (presenter.View, error) {
	return c.roundTrip(ctx, event{kind: eventSnapshot})
}

// Settled waits until the latest issued request resolved, successfully or
// not, and returns that view.
func (c *Controller) Settled(ctx context.Context) (presenter.View, error) {
	return c.roundTrip(ctx, event{kind: eventSettled})
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) roundTrip(ctx context.Context, ev event) (presenter.View, error) {
	ev.reply = make(chan presenter.View, 1)
	if err := c.send(ctx, ev); err != nil {
		return presenter.View{}, err
	}
	select {
	case v := <-ev.reply:
		return v, nil
	case <-ctx.Done():
		return presenter.View{}, ctx.Err()
	case <-c.done:
		return presenter.View{}, ErrControllerStopped
	}
}

func (c *Controller) send(ctx context.Context, ev event) error {
	select {
	case <-c.done:
		return ErrControllerStopped
	default:
	}
	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrControllerStopped
	}
}

func (c *Controller) handle(ev event) {
	switch ev.kind {
	case eventAction:
		c.apply(ev.action)
		if ev.reply != nil {
			ev.reply <- c.view()
		}
	case eventSnapshot:
		ev.reply <- c.view()
	case eventSettled:
		if v := c.view(); settled(v) {
			ev.reply <- v
			return
		}
		c.waiters = append(c.waiters, ev.reply)
	}
}

func (c *Controller) apply(action query.Action) {
	if action == nil {
		return
	}
	next := c.reducer.Apply(c.state, action, c.result.LastPage())
	if next.Equal(c.state) {
		slog.Debug("action left state unchanged", slog.String("action", action.Kind()))
		return
	}

	c.state = next
	slog.Debug("state changed",
		slog.String("action", action.Kind()),
		slog.String("query", next.Fingerprint()),
	)
	if !c.coord.OnStateChange(next) {
		c.render(c.view())
	}
}

// publish is the coordinator callback; it runs on the loop goroutine.
func (c *Controller) publish(r coordinator.Result) {
	c.result = r
	if c.clampToResult() && c.coord.OnStateChange(c.state) {
		return
	}
	v := c.view()
	c.render(v)

	if len(c.waiters) > 0 && settled(v) {
		for _, w := range c.waiters {
			w <- v
		}
		c.waiters = nil
	}
}

// clampToResult pulls the page back inside a ready result for the current
// filters that has fewer pages than the page it was asked for.
func (c *Controller) clampToResult() bool {
	r := c.result
	if r.Status != coordinator.StatusReady || !r.ForQuery.SameFilters(c.state) || c.state.Page <= r.TotalPages {
		return false
	}
	slog.Debug("page beyond last page, clamping",
		slog.Int("page", c.state.Page),
		slog.Int("total_pages", r.TotalPages),
	)
	c.state = c.reducer.Apply(c.state, query.SetPage{Page: r.TotalPages}, r.TotalPages)
	return true
}

// post hands completions from fetch goroutines back to the loop.
func (c *Controller) post(done coordinator.Completion) {
	select {
	case c.completions <- done:
	case <-c.done:
	}
}

func (c *Controller) view() presenter.View {
	return presenter.Derive(c.state, c.result)
}

func settled(v presenter.View) bool {
	return !v.IsLoading && !v.Stale
}
