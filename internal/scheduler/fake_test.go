package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/crucial707/mailprobe/internal/models"
)

// fakeStore is an in-memory Store for scheduler tests.
type fakeStore struct {
	mu         sync.Mutex
	schedules  []models.Schedule
	tz         string
	current    string
	accountLog []string
	upsertErr  error
	listErr    error
	listCalls  int
}

func (f *fakeStore) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Schedule, len(f.schedules))
	copy(out, f.schedules)
	return out, nil
}

func (f *fakeStore) UpsertSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return models.Schedule{}, f.upsertErr
	}
	for i := range f.schedules {
		if f.schedules[i].ID == s.ID {
			f.schedules[i] = s
			return s, nil
		}
	}
	f.schedules = append(f.schedules, s)
	return s, nil
}

func (f *fakeStore) Timezone(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tz == "" {
		return "UTC", nil
	}
	return f.tz, nil
}

func (f *fakeStore) CurrentAccount(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeStore) SetCurrentAccount(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = name
	f.accountLog = append(f.accountLog, name)
	return nil
}

func (f *fakeStore) get(t *testing.T, id string) models.Schedule {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.schedules {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("schedule %s not in store", id)
	return models.Schedule{}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts.UTC()
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
