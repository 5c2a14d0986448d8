package scheduler

import (
	"context"
	"testing"

	"github.com/crucial707/mailprobe/internal/models"
)

func successSend(ctx context.Context, s models.Schedule) models.SendResult {
	return models.SendResult{Success: true, Sent: s.Count, Total: s.Count}
}

func failingSend(msg string) SendFunc {
	return func(ctx context.Context, s models.Schedule) models.SendResult {
		return models.SendResult{Success: false, Error: msg}
	}
}

// Spec scenario: an hourly schedule due at 00:00 run at 00:05 reschedules
// exactly one hour after the run start, not after the original due time.
func TestRunner_IntervalSuccess(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	now := mustTime(t, "2024-01-01T00:05:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:            "s1",
		Enabled:       true,
		ScheduleType:  models.ScheduleInterval,
		IntervalHours: 1,
		Recipients:    []string{"a@x.com"},
		Count:         1,
		NextRunUTC:    &due,
	}}}

	r := &Runner{Store: store, Send: successSend, Log: testLogger(), Now: fixedClock(now)}
	r.Run(context.Background(), store.get(t, "s1"))

	got := store.get(t, "s1")
	if got.LastStatus != models.StatusSuccess {
		t.Errorf("last_status: got %q, want success", got.LastStatus)
	}
	if got.FailureCount != 0 {
		t.Errorf("failure_count: got %d, want 0", got.FailureCount)
	}
	if got.NextRunUTC == nil || !got.NextRunUTC.Equal(mustTime(t, "2024-01-01T01:05:00Z")) {
		t.Errorf("next_run_utc: got %v, want 2024-01-01T01:05:00Z", got.NextRunUTC)
	}
	if got.LastRunUTC == nil || !got.LastRunUTC.Equal(now) {
		t.Errorf("last_run_utc: got %v, want %v", got.LastRunUTC, now)
	}
	if !got.Enabled {
		t.Error("interval schedule must stay enabled after success")
	}
}

// Spec scenario: three consecutive failures disable the schedule and leave
// the due time untouched so it was retried every tick in between.
func TestRunner_ThreeFailuresAutoDisable(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	now := mustTime(t, "2024-01-01T00:05:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:            "s1",
		Enabled:       true,
		ScheduleType:  models.ScheduleInterval,
		IntervalHours: 1,
		Recipients:    []string{"a@x.com"},
		Count:         1,
		NextRunUTC:    &due,
	}}}

	r := &Runner{Store: store, Send: failingSend("auth failed"), Log: testLogger(), Now: fixedClock(now)}

	for i := 1; i <= 3; i++ {
		r.Run(context.Background(), store.get(t, "s1"))
		got := store.get(t, "s1")
		if got.FailureCount != i {
			t.Fatalf("after run %d: failure_count got %d, want %d", i, got.FailureCount, i)
		}
		if wantEnabled := i < 3; got.Enabled != wantEnabled {
			t.Errorf("after run %d: enabled got %v, want %v", i, got.Enabled, wantEnabled)
		}
	}

	got := store.get(t, "s1")
	if got.LastError != "auth failed" {
		t.Errorf("last_error: got %q, want %q", got.LastError, "auth failed")
	}
	if got.LastStatus != models.StatusError {
		t.Errorf("last_status: got %q, want error", got.LastStatus)
	}
	// Never advanced on failure.
	if got.NextRunUTC == nil || !got.NextRunUTC.Equal(due) {
		t.Errorf("next_run_utc: got %v, want unchanged %v", got.NextRunUTC, due)
	}
}

func TestRunner_SuccessResetsFailureCount(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:            "s1",
		Enabled:       true,
		ScheduleType:  models.ScheduleInterval,
		IntervalHours: 1,
		Recipients:    []string{"a@x.com"},
		Count:         1,
		NextRunUTC:    &due,
		FailureCount:  2,
	}}}

	r := &Runner{Store: store, Send: successSend, Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "s1"))

	if got := store.get(t, "s1"); got.FailureCount != 0 {
		t.Errorf("failure_count after success: got %d, want 0", got.FailureCount)
	}
}

func TestRunner_OneOffSuccessConsumesSchedule(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:           "once",
		Enabled:      true,
		ScheduleType: models.ScheduleOneOff,
		Recipients:   []string{"a@x.com"},
		Count:        1,
		NextRunUTC:   &due,
	}}}

	r := &Runner{Store: store, Send: successSend, Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "once"))

	got := store.get(t, "once")
	if got.Enabled {
		t.Error("completed one_off must be disabled")
	}
	if got.NextRunUTC != nil {
		t.Errorf("completed one_off next_run_utc: got %v, want nil", got.NextRunUTC)
	}
	if got.LastStatus != models.StatusSuccess {
		t.Errorf("last_status: got %q, want success", got.LastStatus)
	}
}

func TestRunner_NoRecipientsSkipsSend(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:            "s1",
		Enabled:       true,
		ScheduleType:  models.ScheduleInterval,
		IntervalHours: 1,
		NextRunUTC:    &due,
	}}}

	sendCalls := 0
	send := func(ctx context.Context, s models.Schedule) models.SendResult {
		sendCalls++
		return models.SendResult{Success: true}
	}

	r := &Runner{Store: store, Send: send, Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "s1"))

	if sendCalls != 0 {
		t.Errorf("send called %d times, want 0", sendCalls)
	}
	got := store.get(t, "s1")
	if got.LastStatus != models.StatusError || got.LastError != "No recipients configured" {
		t.Errorf("got status %q error %q", got.LastStatus, got.LastError)
	}
	if got.FailureCount != 1 {
		t.Errorf("failure_count: got %d, want 1", got.FailureCount)
	}
	if got.LastRunUTC == nil || !got.LastRunUTC.Equal(due) {
		t.Errorf("last_run_utc: got %v, want %v", got.LastRunUTC, due)
	}
	// The due time is untouched so the schedule is retried next tick.
	if got.NextRunUTC == nil || !got.NextRunUTC.Equal(due) {
		t.Errorf("next_run_utc: got %v, want %v", got.NextRunUTC, due)
	}
}

func TestRunner_PanicInSendIsContained(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:            "s1",
		Enabled:       true,
		ScheduleType:  models.ScheduleInterval,
		IntervalHours: 1,
		Recipients:    []string{"a@x.com"},
		Count:         1,
		NextRunUTC:    &due,
	}}}

	panicking := func(ctx context.Context, s models.Schedule) models.SendResult {
		panic("smtp client exploded")
	}

	r := &Runner{Store: store, Send: panicking, Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "s1")) // must not panic

	got := store.get(t, "s1")
	if got.LastStatus != models.StatusError {
		t.Errorf("last_status: got %q, want error", got.LastStatus)
	}
	if got.LastError != "smtp client exploded" {
		t.Errorf("last_error: got %q", got.LastError)
	}
	if got.FailureCount != 1 {
		t.Errorf("failure_count: got %d, want 1", got.FailureCount)
	}
}

func TestRunner_FailureWithoutMessageGetsGenericError(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{schedules: []models.Schedule{{
		ID:            "s1",
		Enabled:       true,
		ScheduleType:  models.ScheduleInterval,
		IntervalHours: 1,
		Recipients:    []string{"a@x.com"},
		Count:         1,
		NextRunUTC:    &due,
	}}}

	r := &Runner{Store: store, Send: failingSend(""), Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "s1"))

	if got := store.get(t, "s1"); got.LastError != "Send operation reported failure" {
		t.Errorf("last_error: got %q", got.LastError)
	}
}

func TestRunner_AccountSwapAndRestore(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{
		current: "default",
		schedules: []models.Schedule{{
			ID:            "s1",
			Enabled:       true,
			ScheduleType:  models.ScheduleInterval,
			IntervalHours: 1,
			Recipients:    []string{"a@x.com"},
			Count:         1,
			ConfigName:    "burst",
			NextRunUTC:    &due,
		}},
	}

	var activeDuringSend string
	send := func(ctx context.Context, s models.Schedule) models.SendResult {
		activeDuringSend, _ = store.CurrentAccount(ctx)
		return models.SendResult{Success: true}
	}

	r := &Runner{Store: store, Send: send, Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "s1"))

	if activeDuringSend != "burst" {
		t.Errorf("active account during send: got %q, want burst", activeDuringSend)
	}
	if cur, _ := store.CurrentAccount(context.Background()); cur != "default" {
		t.Errorf("active account after run: got %q, want default", cur)
	}
}

func TestRunner_AccountRestoredAfterPanic(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{
		current: "default",
		schedules: []models.Schedule{{
			ID:            "s1",
			Enabled:       true,
			ScheduleType:  models.ScheduleInterval,
			IntervalHours: 1,
			Recipients:    []string{"a@x.com"},
			Count:         1,
			ConfigName:    "burst",
			NextRunUTC:    &due,
		}},
	}

	panicking := func(ctx context.Context, s models.Schedule) models.SendResult {
		panic("boom")
	}

	r := &Runner{Store: store, Send: panicking, Log: testLogger(), Now: fixedClock(due)}
	r.Run(context.Background(), store.get(t, "s1"))

	if cur, _ := store.CurrentAccount(context.Background()); cur != "default" {
		t.Errorf("active account after panic: got %q, want default", cur)
	}
}

func TestRunner_PersistFailureDoesNotPanic(t *testing.T) {
	due := mustTime(t, "2024-01-01T00:00:00Z")
	store := &fakeStore{
		upsertErr: context.DeadlineExceeded,
		schedules: []models.Schedule{{
			ID:            "s1",
			Enabled:       true,
			ScheduleType:  models.ScheduleInterval,
			IntervalHours: 1,
			Recipients:    []string{"a@x.com"},
			Count:         1,
			NextRunUTC:    &due,
		}},
	}

	r := &Runner{Store: store, Send: successSend, Log: testLogger(), Now: fixedClock(due)}
	updated := r.Run(context.Background(), models.Schedule{
		ID: "s1", Enabled: true, ScheduleType: models.ScheduleInterval,
		IntervalHours: 1, Recipients: []string{"a@x.com"}, Count: 1, NextRunUTC: &due,
	})

	// The returned record still reflects the run even though the write failed.
	if updated.LastStatus != models.StatusSuccess {
		t.Errorf("last_status: got %q, want success", updated.LastStatus)
	}
}
