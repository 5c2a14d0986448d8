package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/mailprobe/internal/metrics"
	"github.com/crucial707/mailprobe/internal/models"
)

// Runner executes one due schedule: it invokes the send operation,
// interprets the result, and persists the updated bookkeeping. It never
// lets an error or panic escape to the evaluator.
type Runner struct {
	Store Store
	Send  SendFunc
	Log   *slog.Logger

	// Now is the clock used for run timestamps; tests override it.
	// Defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) clock() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Run executes the schedule and returns the updated record. The record is
// persisted via a single upsert; nothing is held across ticks.
func (r *Runner) Run(ctx context.Context, s models.Schedule) models.Schedule {
	start := r.clock()

	if len(s.Recipients) == 0 {
		r.Log.Warn("schedule has no recipients, skipping", "schedule_id", s.ID)
		s.LastStatus = models.StatusError
		s.LastError = "No recipients configured"
		s.LastRunUTC = &start
		s.FailureCount++
		r.persist(ctx, &s)
		metrics.IncScheduledRuns(models.StatusError)
		return s
	}

	r.Log.Info("running scheduled job",
		"schedule_id", s.ID,
		"email_type", s.EmailType,
		"recipients", len(s.Recipients),
		"count", s.Count)

	// Bind the run to the schedule's named account configuration, restoring
	// the previous one on every exit path. This swap races against
	// concurrent operator edits of the active account; accepted for
	// single-operator use.
	prev, err := r.Store.CurrentAccount(ctx)
	if err != nil {
		r.Log.Warn("read current account failed", "schedule_id", s.ID, "err", err)
	}
	if s.ConfigName != "" && s.ConfigName != prev {
		if err := r.Store.SetCurrentAccount(ctx, s.ConfigName); err != nil {
			r.Log.Warn("switch account failed", "schedule_id", s.ID, "account", s.ConfigName, "err", err)
		}
		defer func() {
			if prev != "" {
				if err := r.Store.SetCurrentAccount(ctx, prev); err != nil {
					r.Log.Warn("restore account failed", "schedule_id", s.ID, "account", prev, "err", err)
				}
			}
		}()
	}

	result := r.invoke(ctx, s)

	s.LastRunUTC = &start
	if result.Success {
		s.LastStatus = models.StatusSuccess
		s.FailureCount = 0
		if next, ok := NextRun(s, start, r.location(ctx)); ok {
			s.NextRunUTC = &next
		} else {
			// One-off completed: disable further runs.
			s.Enabled = false
			s.NextRunUTC = nil
		}
		r.Log.Info("scheduled job completed", "schedule_id", s.ID)
	} else {
		s.LastStatus = models.StatusError
		msg := result.Error
		if msg == "" {
			msg = "Send operation reported failure"
		}
		s.LastError = msg
		s.FailureCount++
		r.Log.Warn("scheduled job failed",
			"schedule_id", s.ID,
			"failure_count", s.FailureCount,
			"err", msg)
		// The due time is left untouched: a failed job is retried every
		// tick until it succeeds or hits the failure cap.
		if s.FailureCount >= models.MaxConsecutiveFailures {
			s.Enabled = false
			r.Log.Error("schedule disabled after consecutive failures",
				"schedule_id", s.ID, "failure_count", s.FailureCount)
		}
	}

	r.persist(ctx, &s)
	metrics.IncScheduledRuns(s.LastStatus)
	return s
}

// invoke calls the send operation, converting a panic into a failed result
// so a misbehaving collaborator cannot kill the loop.
func (r *Runner) invoke(ctx context.Context, s models.Schedule) (result models.SendResult) {
	defer func() {
		if p := recover(); p != nil {
			r.Log.Error("panic in send operation", "schedule_id", s.ID, "panic", p)
			result = models.SendResult{Success: false, Error: fmt.Sprint(p)}
		}
	}()
	return r.Send(ctx, s)
}

// persist writes the updated record. A failed write is logged and absorbed;
// the evaluator re-reads from the store next tick anyway.
func (r *Runner) persist(ctx context.Context, s *models.Schedule) {
	if _, err := r.Store.UpsertSchedule(ctx, *s); err != nil {
		r.Log.Error("persist schedule failed", "schedule_id", s.ID, "err", err)
	}
}

// location loads the configured timezone, falling back to UTC.
func (r *Runner) location(ctx context.Context) *time.Location {
	tz, err := r.Store.Timezone(ctx)
	if err != nil || tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		r.Log.Warn("invalid timezone, falling back to UTC", "tz", tz)
		return time.UTC
	}
	return loc
}
