// Package fetch runs store queries for the gallery: debounced search input,
// bounded retries on connectivity failures, and cycle supersession so that a
// stale response never overwrites a newer one.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gallery/internal/service"
	"gallery/internal/telemetry"
)

const (
	DefaultDebounce     = 250 * time.Millisecond
	DefaultRetryDelay   = 1000 * time.Millisecond
	DefaultWindow       = 5000 * time.Millisecond
	DefaultLoadingGrace = 1000 * time.Millisecond
)

// User-facing messages for a failed cycle.
const (
	MsgUnreachable = "Unable to reach the image store. Check your connection and retry."
	MsgMalformed   = "The image store returned an unexpected response."
)

var (
	// ErrUnreachable wraps the last failure of a cycle that ran out of retries.
	ErrUnreachable = errors.New("image store unreachable")

	// ErrWindowElapsed is reported when the hard ceiling fires.
	ErrWindowElapsed = errors.New("retry window elapsed")
)

// State is the lifecycle state of the current fetch cycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateStable
	StateError
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateStable:
		return "stable"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Result is what a successful attempt produces.
type Result struct {
	Images []service.Image
	Lists  []service.List
}

// FetchFunc performs one attempt. It should return promptly when ctx is done.
type FetchFunc func(ctx context.Context, query string) (Result, error)

// Options tunes the controller timings.
type Options struct {
	Debounce     time.Duration
	RetryDelay   time.Duration
	Window       time.Duration
	LoadingGrace time.Duration
	Logger       *zap.Logger
}

// DefaultOptions returns the standard timings.
func DefaultOptions() Options {
	return Options{
		Debounce:     DefaultDebounce,
		RetryDelay:   DefaultRetryDelay,
		Window:       DefaultWindow,
		LoadingGrace: DefaultLoadingGrace,
	}
}

// Snapshot is an immutable view of the controller state.
// Result slices are shared and must be treated as read-only.
type Snapshot struct {
	State    State
	Query    string
	Result   Result
	Err      error
	Message  string
	Attempts int
	Cycle    uint64

	// Dimmed asks the presentation layer to reduce prominence of the
	// current results; true whenever the state is not Stable.
	Dimmed bool
	// Loading is set only once a fetch has been pending longer than the
	// loading grace period.
	Loading bool
}

type cycle struct {
	id      uint64
	query   string
	start   time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	span    trace.Span
	timers  []*time.Timer
	attempt int
	done    bool
	settled chan struct{}
}

// Controller owns the fetch cycles for one view.
type Controller struct {
	fetch FetchFunc
	opts  Options
	log   *zap.Logger

	mu          sync.Mutex
	closed      bool
	query       string
	debounce    *time.Timer
	debounceGen uint64
	nextID      uint64
	cur         *cycle
	snap        Snapshot
	updates     chan Snapshot
}

// New creates a controller. Zero timings in opts fall back to the defaults.
func New(fetch FetchFunc, opts Options) *Controller {
	def := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = def.Debounce
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = def.RetryDelay
	}
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.LoadingGrace <= 0 {
		opts.LoadingGrace = def.LoadingGrace
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		fetch:   fetch,
		opts:    opts,
		log:     log.Named("fetch"),
		updates: make(chan Snapshot, 1),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Updates delivers the latest snapshot after every transition. Only the most
// recent undelivered snapshot is kept. The channel is closed by Close.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// SetQuery records raw search input. The query is committed, and a new cycle
// started, once the input has been stable for the debounce period.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounceGen++
	gen := c.debounceGen
	c.debounce = time.AfterFunc(c.opts.Debounce, func() { c.commit(gen, text) })
}

func (c *Controller) commit(gen uint64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.debounceGen {
		return
	}
	c.debounce = nil
	if c.cur != nil && text == c.query {
		return
	}
	c.startLocked(text, "query")
}

// Trigger restarts the cycle with the committed query, e.g. after the tag or
// list selection changed.
func (c *Controller) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startLocked(c.query, "trigger")
}

// Search commits query immediately, bypassing the debounce.
func (c *Controller) Search(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
		c.debounceGen++
	}
	c.startLocked(query, "search")
}

// Retry is the manual retry affordance; it starts a fresh cycle with a new
// window and attempt count.
func (c *Controller) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startLocked(c.query, "retry")
}

// Wait blocks until the current cycle settles, following supersessions, and
// returns the resulting snapshot. It returns immediately when idle.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	for {
		c.mu.Lock()
		cy := c.cur
		if cy == nil || cy.done {
			snap := c.snap
			c.mu.Unlock()
			return snap, nil
		}
		ch := cy.settled
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

// Close stops all timers, cancels in-flight work and closes Updates.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	if c.cur != nil && !c.cur.done {
		c.cur.span.AddEvent("closed")
		c.settleLocked(c.cur)
	}
	c.closed = true
	close(c.updates)
}

func (c *Controller) startLocked(query, reason string) {
	if c.cur != nil && !c.cur.done {
		c.log.Debug("superseding cycle",
			zap.Uint64("cycle", c.cur.id),
			zap.String("reason", reason))
		c.cur.span.AddEvent("superseded")
		c.settleLocked(c.cur)
	}

	c.nextID++
	ctx, cancel := context.WithCancel(context.Background())
	ctx, span := telemetry.Tracer.Start(ctx, "fetch.cycle",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.String("reason", reason),
		),
	)
	cy := &cycle{
		id:      c.nextID,
		query:   query,
		start:   time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		span:    span,
		settled: make(chan struct{}),
	}
	c.cur = cy
	c.query = query

	c.snap = Snapshot{
		State:  StateFetching,
		Query:  query,
		Result: c.snap.Result,
		Cycle:  cy.id,
		Dimmed: true,
	}

	id := cy.id
	cy.timers = append(cy.timers,
		time.AfterFunc(c.opts.Window, func() { c.expire(id) }),
		time.AfterFunc(c.opts.LoadingGrace, func() { c.markLoading(id) }),
	)

	c.log.Debug("cycle started",
		zap.Uint64("cycle", id),
		zap.String("query", query),
		zap.String("reason", reason))
	c.publishLocked()

	go c.attempt(cy)
}

// live reports whether cy may still mutate state. Callers hold mu.
func (c *Controller) live(cy *cycle) bool {
	return !c.closed && c.cur == cy && !cy.done
}

func (c *Controller) attempt(cy *cycle) {
	c.mu.Lock()
	if !c.live(cy) {
		c.mu.Unlock()
		return
	}
	cy.attempt++
	n := cy.attempt
	c.snap.Attempts = n
	c.mu.Unlock()

	res, err := c.fetch(cy.ctx, cy.query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(cy) {
		c.log.Debug("discarding stale attempt result",
			zap.Uint64("cycle", cy.id),
			zap.Int("attempt", n))
		return
	}

	if err == nil {
		c.record(cy, "ok")
		c.snap.State = StateStable
		c.snap.Result = res
		c.snap.Err = nil
		c.snap.Message = ""
		c.snap.Dimmed = false
		c.snap.Loading = false
		cy.span.SetStatus(codes.Ok, "")
		c.settleLocked(cy)
		c.publishLocked()
		return
	}

	class := Classify(err)
	c.log.Warn("fetch attempt failed",
		zap.Uint64("cycle", cy.id),
		zap.Int("attempt", n),
		zap.Stringer("class", class),
		zap.Error(err))

	switch class {
	case ClassMalformed:
		c.record(cy, "malformed")
		c.failLocked(cy, err, MsgMalformed)
		return
	case ClassPermanent:
		c.record(cy, "error")
		c.failLocked(cy, err, fmt.Sprintf("Search failed: %v", err))
		return
	}

	if time.Since(cy.start) < c.opts.Window-c.opts.RetryDelay {
		c.record(cy, "retry")
		cy.timers = append(cy.timers, time.AfterFunc(c.opts.RetryDelay, func() { c.attempt(cy) }))
		return
	}
	c.record(cy, "exhausted")
	c.failLocked(cy, fmt.Errorf("%w: %w", ErrUnreachable, err), MsgUnreachable)
}

func (c *Controller) expire(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil || c.cur.id != id || !c.live(c.cur) {
		return
	}
	c.log.Warn("retry window elapsed",
		zap.Uint64("cycle", id),
		zap.Int("attempts", c.cur.attempt),
		zap.Duration("window", c.opts.Window))
	c.failLocked(c.cur, fmt.Errorf("%w: %w", ErrUnreachable, ErrWindowElapsed), MsgUnreachable)
}

func (c *Controller) markLoading(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil || c.cur.id != id || !c.live(c.cur) {
		return
	}
	c.snap.Loading = true
	c.publishLocked()
}

func (c *Controller) failLocked(cy *cycle, err error, msg string) {
	c.snap.State = StateError
	c.snap.Err = err
	c.snap.Message = msg
	c.snap.Dimmed = true
	c.snap.Loading = false
	cy.span.RecordError(err)
	cy.span.SetStatus(codes.Error, msg)
	c.settleLocked(cy)
	c.publishLocked()
}

// settleLocked ends cy: every timer is stopped and in-flight work cancelled.
func (c *Controller) settleLocked(cy *cycle) {
	if cy.done {
		return
	}
	cy.done = true
	for _, t := range cy.timers {
		t.Stop()
	}
	cy.timers = nil
	cy.cancel()
	cy.span.SetAttributes(attribute.Int("attempts", cy.attempt))
	cy.span.End()
	telemetry.FetchCycleDuration.Record(context.Background(), time.Since(cy.start).Seconds(),
		metric.WithAttributes(attribute.String("state", c.snap.State.String())))
	close(cy.settled)
}

func (c *Controller) record(cy *cycle, outcome string) {
	telemetry.FetchAttempts.Add(cy.ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.snap
}
