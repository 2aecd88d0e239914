// Package navigator holds the month selection state machine that drives stats loading.
package navigator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// StatsSource loads the summary for one month.
type StatsSource interface {
	GetMonthlyStats(ctx context.Context, year, month int) (api.MonthlyStats, error)
}

// Status is the load lifecycle of the controller.
type Status int

const (
	// StatusIdle means nothing has been loaded yet.
	StatusIdle Status = iota
	// StatusLoading means a fetch is in flight.
	StatusLoading
	// StatusReady means the last fetch succeeded.
	StatusReady
	// StatusFailed means the last fetch failed and Data holds the empty summary.
	StatusFailed
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a snapshot of the controller for presentation.
type State struct {
	Selection
	Data    api.MonthlyStats `json:"data"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
	Status  Status           `json:"status"`
}

// Controller owns the selected month and reloads stats whenever it changes.
// At most one load is in flight: navigation and refresh are refused while loading.
type Controller struct {
	source   StatsSource
	now      func() time.Time
	labels   Labels
	logger   *slog.Logger
	observer func(State)

	mu      sync.Mutex
	state   State
	current *Load
	seq     uint64

	notifyMu sync.Mutex
	notified uint64
}

// Action names a transition.
type Action string

// Transitions accepted by Do.
const (
	ActionStart    Action = "start"
	ActionPrevious Action = "previous"
	ActionNext     Action = "next"
	ActionRefresh  Action = "refresh"
)

// Load is one fetch started by a transition.
type Load struct {
	done  chan struct{}
	state State
}

// Done is closed once the fetch has settled.
func (l *Load) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the fetch settles and returns the state it produced, even if a later
// transition has changed the controller since.
func (l *Load) Wait() State {
	<-l.done
	return l.state
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the source of "now" for the initial selection and IsCurrentMonth.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLabels sets the month label table used by FormattedMonth.
func WithLabels(labels Labels) Option {
	return func(c *Controller) {
		c.labels = labels
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a callback invoked with a fresh snapshot after every state change.
// It is called without the controller lock held. Snapshots superseded by a newer one are
// dropped, so fn sees states in order. fn must not start transitions itself.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// New creates a Controller whose selection is the current month.
func New(source StatsSource, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		now:    time.Now,
		labels: VietnameseLabels,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	settled := &Load{done: make(chan struct{})}
	close(settled.done)
	c.current = settled
	c.state = State{
		Selection: SelectionOf(c.now()),
		Data:      api.EmptyStats(),
		Status:    StatusIdle,
	}
	return c
}

// Start performs the initial load for the selected month.
func (c *Controller) Start(ctx context.Context) bool {
	_, ok := c.Do(ctx, ActionStart)
	return ok
}

// GoToPreviousMonth selects the previous month and reloads. It returns false, changing
// nothing, while a load is in flight.
func (c *Controller) GoToPreviousMonth(ctx context.Context) bool {
	_, ok := c.Do(ctx, ActionPrevious)
	return ok
}

// GoToNextMonth selects the next month and reloads. It returns false, changing nothing,
// while a load is in flight.
func (c *Controller) GoToNextMonth(ctx context.Context) bool {
	_, ok := c.Do(ctx, ActionNext)
	return ok
}

// RefreshData reloads the selected month. It returns false while a load is in flight.
func (c *Controller) RefreshData(ctx context.Context) bool {
	_, ok := c.Do(ctx, ActionRefresh)
	return ok
}

// Do runs a transition and returns the load it started. It returns false, changing
// nothing, while a load is in flight or when the action is unknown.
func (c *Controller) Do(ctx context.Context, action Action) (*Load, bool) {
	var next func(Selection) Selection
	switch action {
	case ActionStart, ActionRefresh:
		next = func(s Selection) Selection { return s }
	case ActionPrevious:
		next = Selection.Previous
	case ActionNext:
		next = Selection.Next
	default:
		return nil, false
	}
	return c.transition(ctx, action, next)
}

// Wait blocks until the in-flight load, if any, has finished.
func (c *Controller) Wait() {
	c.mu.Lock()
	l := c.current
	c.mu.Unlock()
	<-l.done
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the selected month.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Selection
}

// FormattedMonth renders the selected month, e.g. "Tháng 9, 2024".
func (c *Controller) FormattedMonth() string {
	return c.labels.Format(c.Selection())
}

// IsCurrentMonth reports whether the selected month contains the clock's "now".
func (c *Controller) IsCurrentMonth() bool {
	return c.Selection() == SelectionOf(c.now())
}

func (c *Controller) transition(ctx context.Context, action Action, next func(Selection) Selection) (*Load, bool) {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		c.logger.Debug("ignoring navigation while loading", "action", action)
		return nil, false
	}

	sel := next(c.state.Selection)
	l := &Load{done: make(chan struct{})}
	c.current = l
	c.state.Selection = sel
	c.state.Loading = true
	c.state.Status = StatusLoading
	c.state.Error = ""
	c.seq++
	seq, snapshot := c.seq, c.state
	c.mu.Unlock()

	c.logger.Debug("loading month", "action", action, "selection", sel.String())
	c.notify(seq, snapshot)

	go c.load(ctx, sel, l)
	return l, true
}

func (c *Controller) load(ctx context.Context, sel Selection, l *Load) {
	data, err := c.source.GetMonthlyStats(ctx, sel.Year, sel.Month)

	c.mu.Lock()
	c.state.Loading = false
	if err != nil {
		c.state.Data = api.EmptyStats()
		c.state.Error = err.Error()
		c.state.Status = StatusFailed
	} else {
		c.state.Data = data
		c.state.Status = StatusReady
	}
	c.seq++
	seq, snapshot := c.seq, c.state
	l.state = snapshot
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("failed to load monthly stats", "selection", sel.String(), "error", err)
	}
	c.notify(seq, snapshot)
	close(l.done)
}

// notify delivers s unless a snapshot with a higher sequence number was already delivered.
func (c *Controller) notify(seq uint64, s State) {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.notified {
		return
	}
	c.notified = seq
	c.observer(s)
}
