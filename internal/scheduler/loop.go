package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
)

// DefaultInterval is the wall-clock delay between ticks.
const DefaultInterval = 30 * time.Second

// LockFileName is the well-known lock file under the data directory.
const LockFileName = "scheduler.lock"

// Scheduler owns the background tick loop. At most one process per host
// runs the loop: every process may call Start, but only the one that wins
// the non-blocking file lock keeps ticking. The lock is held for the life
// of the process and released by the OS on exit.
type Scheduler struct {
	Evaluator *Evaluator
	LockPath  string
	Interval  time.Duration
	Log       *slog.Logger

	started atomic.Bool
}

// Start launches the background loop. It is idempotent: the first call
// returns true and spawns the loop goroutine; later calls return false and
// do nothing.
func (s *Scheduler) Start() bool {
	if !s.started.CompareAndSwap(false, true) {
		return false
	}
	go s.run()
	return true
}

func (s *Scheduler) run() {
	s.Log.Info("scheduler starting", "lock", s.LockPath)

	if err := os.MkdirAll(filepath.Dir(s.LockPath), 0o755); err != nil {
		s.Log.Error("create lock directory failed", "err", err)
		return
	}

	lock := flock.New(s.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		s.Log.Error("acquire scheduler lock failed", "err", err)
		return
	}
	if !locked {
		// Another process (e.g. a sibling API worker) already runs the loop.
		s.Log.Info("another scheduler instance is already running; exiting")
		return
	}

	s.Log.Info("scheduler acquired lock; entering run loop")

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	for {
		s.tick()
		time.Sleep(interval)
	}
}

// tick runs one evaluation pass. Errors and panics are logged and absorbed;
// nothing may kill the loop.
func (s *Scheduler) tick() {
	defer func() {
		if p := recover(); p != nil {
			s.Log.Error("panic in scheduler tick", "panic", p)
		}
	}()
	if err := s.Evaluator.Tick(context.Background(), time.Now().UTC()); err != nil {
		s.Log.Error("scheduler tick failed", "err", err)
	}
}
