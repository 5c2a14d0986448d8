package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Evaluator walks all schedules once per tick and dispatches due ones to
// the runner. Schedules are independent: one schedule's failure never
// prevents evaluation of the others.
type Evaluator struct {
	Store  Store
	Runner *Runner
	Log    *slog.Logger
}

// Tick evaluates every enabled schedule against now.
//
// Repeating schedules without a due time get one seeded from now and are
// not run this tick; execution happens on the first tick at or past the
// seeded time. One-off schedules without a due time are left alone: they
// are expected to be created with an explicit next_run_utc and otherwise
// never fire.
func (e *Evaluator) Tick(ctx context.Context, now time.Time) error {
	schedules, err := e.Store.ListSchedules(ctx)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil
	}

	loc := e.location(ctx)

	for _, s := range schedules {
		if !s.Enabled {
			continue
		}

		if s.NextRunUTC == nil {
			if s.IsRepeating() {
				if next, ok := NextRun(s, now, loc); ok {
					s.NextRunUTC = &next
					if _, err := e.Store.UpsertSchedule(ctx, s); err != nil {
						e.Log.Error("seed next run failed", "schedule_id", s.ID, "err", err)
					}
				}
			}
			continue
		}

		if !s.NextRunUTC.After(now) {
			e.Runner.Run(ctx, s)
		}
	}
	return nil
}

func (e *Evaluator) location(ctx context.Context) *time.Location {
	tz, err := e.Store.Timezone(ctx)
	if err != nil || tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.Log.Warn("invalid timezone, falling back to UTC", "tz", tz)
		return time.UTC
	}
	return loc
}
