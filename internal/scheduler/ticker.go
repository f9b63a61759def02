// Package scheduler runs the watch loop: periodic balance syncs plus an
// immediate (debounced) re-sync whenever a holiday or half day is declared
// or removed, so the balance reflects new declarations right away.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/christopherklint97/balancr/internal/config"
	"github.com/christopherklint97/balancr/internal/engine"
)

// debounceDelay coalesces bursts of day-set mutations into one sync.
const debounceDelay = 2 * time.Second

type Watcher struct {
	cfg     *config.Config
	engine  *engine.Engine
	changes <-chan struct{}
	logger  *slog.Logger
	onSync  func(engine.Result)
}

func NewWatcher(cfg *config.Config, eng *engine.Engine, changes <-chan struct{}, logger *slog.Logger, onSync func(engine.Result)) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		cfg:     cfg,
		engine:  eng,
		changes: changes,
		logger:  logger,
		onSync:  onSync,
	}
}

// Run blocks until ctx is cancelled. Failed syncs are not retried early;
// the next tick (or the user) retries.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer w.removePID()

	interval := time.Duration(w.cfg.Watch.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	w.logger.Info("watch started", "interval", interval)
	w.sync(ctx)

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		nextTick := nextAlignedTick(time.Now(), interval)

		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil
		case <-time.After(time.Until(nextTick)):
			w.sync(ctx)
		case <-w.changes:
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
				debounceCh = debounce.C
			} else {
				if !debounce.Stop() {
					<-debounce.C
				}
				debounce.Reset(debounceDelay)
			}
		case <-debounceCh:
			debounce = nil
			debounceCh = nil
			w.logger.Debug("day sets changed, re-syncing")
			w.sync(ctx)
		}
	}
}

func (w *Watcher) sync(ctx context.Context) {
	res := w.engine.Sync(ctx)
	if w.onSync != nil {
		w.onSync(res)
	}
	if res.Status != engine.StatusDone {
		return
	}
	w.maybeNotify(res)
}

func (w *Watcher) maybeNotify(res engine.Result) {
	if !w.cfg.Watch.Notify {
		return
	}
	deficit := -res.Snapshot.HourBalance
	if deficit < w.cfg.Watch.NotifyThresholdHours {
		return
	}
	msg := fmt.Sprintf("You are %.1f hours behind this month", deficit)
	if err := beeep.Notify("balancr", msg, ""); err != nil {
		w.logger.Warn("sending notification failed", "error", err)
	}
}

// nextAlignedTick returns the next tick aligned to the interval within the
// hour, so a 30-minute interval fires at :00 and :30.
func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 30
	}

	currentMinute := now.Minute()
	nextMinute := ((currentMinute / mins) + 1) * mins

	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return next.Add(time.Duration(nextMinute) * time.Minute)
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "balancr.pid"), nil
}

func (w *Watcher) writePID() error {
	path, err := pidPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (w *Watcher) removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running watcher found")
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
