package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func newLoop(t *testing.T, store *fakeStore, interval time.Duration) *Scheduler {
	t.Helper()
	return &Scheduler{
		Evaluator: newEvaluator(store, successSend, time.Now().UTC()),
		LockPath:  filepath.Join(t.TempDir(), LockFileName),
		Interval:  interval,
		Log:       testLogger(),
	}
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	s := newLoop(t, &fakeStore{}, time.Hour)
	if !s.Start() {
		t.Fatal("first Start must return true")
	}
	for i := 0; i < 3; i++ {
		if s.Start() {
			t.Fatal("repeated Start must return false")
		}
	}
}

func TestScheduler_LockContentionExitsWithoutTicking(t *testing.T) {
	store := &fakeStore{}
	s := newLoop(t, store, 5*time.Millisecond)

	// Hold the lock as if another process owned the loop.
	holder := flock.New(s.LockPath)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer holder.Unlock()

	if !s.Start() {
		t.Fatal("Start must return true even when the lock is contended")
	}
	time.Sleep(100 * time.Millisecond)

	store.mu.Lock()
	calls := store.listCalls
	store.mu.Unlock()
	if calls != 0 {
		t.Errorf("loser ticked %d times, want 0", calls)
	}
}

func TestScheduler_LoopTicksRepeatedly(t *testing.T) {
	store := &fakeStore{}
	s := newLoop(t, store, 5*time.Millisecond)

	if !s.Start() {
		t.Fatal("Start must return true")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		store.mu.Lock()
		calls := store.listCalls
		store.mu.Unlock()
		if calls >= 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("loop never reached two ticks")
}

func TestScheduler_TickAbsorbsEvaluatorPanic(t *testing.T) {
	// A nil evaluator makes Tick panic outright; the loop must survive it.
	s := &Scheduler{Evaluator: nil, Log: testLogger()}
	s.tick()
}
