// Package engine computes the monthly hour balance: worked hours fetched
// from Toggl minus the hours the work schedule expected so far.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/christopherklint97/balancr/internal/toggl"
	"github.com/christopherklint97/balancr/internal/workday"
)

// Status is the sync state machine. A run moves Idle → Authenticating →
// Fetching → Aggregating → Done, or stops at one of the failure states.
type Status int

const (
	StatusIdle Status = iota
	StatusCredentialsMissing
	StatusAuthenticating
	StatusAuthFailed
	StatusFetching
	StatusFetchFailed
	StatusAggregating
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCredentialsMissing:
		return "credentials missing"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthFailed:
		return "authentication failed"
	case StatusFetching:
		return "fetching entries"
	case StatusFetchFailed:
		return "fetch failed"
	case StatusAggregating:
		return "aggregating"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Snapshot is one consistent reading of the month's hours. The three
// fields are always computed from the same fetch and the same day sets.
type Snapshot struct {
	TotalHours    float64
	ExpectedHours float64
	HourBalance   float64
	FetchedAt     time.Time
}

// Result is what a single sync run resolves to. Failures never escape as
// errors; they land here as a terminal status and a user-facing message.
// On failure Snapshot carries the previous (stale but valid) snapshot.
type Result struct {
	Status   Status
	Snapshot Snapshot
	Message  string
}

// API is the slice of the Toggl client the engine needs.
type API interface {
	Me(ctx context.Context) (*toggl.Me, error)
	TimeEntries(ctx context.Context, start, end time.Time) ([]toggl.TimeEntry, error)
}

// DaySets provides the current holiday and half-day declarations.
type DaySets interface {
	Holidays() workday.DaySet
	HalfDays() workday.DaySet
}

// Credentials are read-only inputs owned by the settings layer.
type Credentials struct {
	APIKey      string
	WorkspaceID string
}

const msgCredentialsMissing = "API Key or Workspace ID is missing"

// Engine runs the sync pipeline and publishes the latest snapshot.
type Engine struct {
	creds    Credentials
	api      API
	days     DaySets
	schedule workday.Schedule
	now      func() time.Time
	logger   *slog.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64

	pub      sync.RWMutex
	snapshot Snapshot
	status   Status
	message  string
}

type Option func(*Engine)

// WithClock overrides the engine's notion of now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSchedule overrides the default 9/8/5 hour schedule.
func WithSchedule(s workday.Schedule) Option {
	return func(e *Engine) { e.schedule = s }
}

func New(creds Credentials, api API, days DaySets, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Engine{
		creds:    creds,
		api:      api,
		days:     days,
		schedule: workday.DefaultSchedule(),
		now:      time.Now,
		logger:   logger,
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Latest returns the last published snapshot together with the status and
// message of the most recent run.
func (e *Engine) Latest() (Snapshot, Status, string) {
	e.pub.RLock()
	defer e.pub.RUnlock()
	return e.snapshot, e.status, e.message
}

// Sync runs the pipeline once: credentials → identity check → fetch →
// aggregate → publish. Starting a sync cancels any run still in flight;
// the superseded run's result is discarded rather than racing on the
// published snapshot.
func (e *Engine) Sync(ctx context.Context) Result {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.generation++
	gen := e.generation
	e.mu.Unlock()
	defer cancel()

	res := e.run(ctx)

	e.mu.Lock()
	superseded := gen != e.generation
	e.mu.Unlock()
	if superseded {
		e.logger.Debug("discarding superseded sync result", "generation", gen)
		return res
	}

	e.publish(res)
	return res
}

func (e *Engine) run(ctx context.Context) Result {
	prior, _, _ := e.Latest()

	if e.creds.APIKey == "" || e.creds.WorkspaceID == "" {
		e.logger.Warn("sync aborted, no credentials configured")
		return Result{Status: StatusCredentialsMissing, Snapshot: prior, Message: msgCredentialsMissing}
	}

	e.setStatus(StatusAuthenticating)
	me, err := e.api.Me(ctx)
	if err != nil {
		e.logger.Error("identity check failed", "error", err)
		return Result{Status: StatusAuthFailed, Snapshot: prior, Message: userMessage(err)}
	}
	e.logger.Debug("authenticated", "user", me.Fullname)

	// Fetch and aggregation share one window so the hours shown always
	// cover exactly the elapsed part of the month.
	now := e.now()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	e.setStatus(StatusFetching)
	entries, err := e.api.TimeEntries(ctx, windowStart, now)
	if err != nil {
		e.logger.Error("fetching time entries failed", "error", err)
		return Result{Status: StatusFetchFailed, Snapshot: prior, Message: userMessage(err)}
	}

	e.setStatus(StatusAggregating)

	// Read the day sets once so expected hours and the balance come from
	// the same declarations even if a mutation lands mid-run.
	holidays := e.days.Holidays()
	halfDays := e.days.HalfDays()

	total := Aggregate(entries, windowStart, now)
	expected := workday.ExpectedHours(workday.DateOf(now), holidays, halfDays, e.schedule)

	snap := Snapshot{
		TotalHours:    total,
		ExpectedHours: expected,
		HourBalance:   total - expected,
		FetchedAt:     now,
	}

	e.logger.Info("sync complete",
		"entries", len(entries),
		"total_hours", snap.TotalHours,
		"expected_hours", snap.ExpectedHours,
		"balance", snap.HourBalance)

	return Result{Status: StatusDone, Snapshot: snap}
}

func (e *Engine) publish(res Result) {
	e.pub.Lock()
	defer e.pub.Unlock()
	e.status = res.Status
	e.message = res.Message
	if res.Status == StatusDone {
		e.snapshot = res.Snapshot
	}
}

func (e *Engine) setStatus(s Status) {
	e.pub.Lock()
	e.status = s
	e.pub.Unlock()
}

func userMessage(err error) string {
	var apiErr *toggl.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "Error: " + err.Error()
}
