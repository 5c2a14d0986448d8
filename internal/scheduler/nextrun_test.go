package scheduler

import (
	"testing"
	"time"

	"github.com/crucial707/mailprobe/internal/models"
)

func TestNextRun_Interval(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:05:00Z")
	s := models.Schedule{ScheduleType: models.ScheduleInterval, IntervalHours: 1.5}

	next, ok := NextRun(s, now, time.UTC)
	if !ok {
		t.Fatal("expected a next run for interval schedule")
	}
	want := mustTime(t, "2024-01-01T01:35:00Z")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextRun_IntervalDefaultsTo24h(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")
	s := models.Schedule{ScheduleType: models.ScheduleInterval}

	next, ok := NextRun(s, now, time.UTC)
	if !ok {
		t.Fatal("expected a next run")
	}
	if want := now.Add(24 * time.Hour); !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextRun_OneOffNeverRepeats(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")
	s := models.Schedule{ScheduleType: models.ScheduleOneOff}

	if _, ok := NextRun(s, now, time.UTC); ok {
		t.Error("one_off schedule must not get a next run")
	}
}

func TestNextRun_UnknownTypeNeverRepeats(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")
	s := models.Schedule{ScheduleType: "hourly"}

	if _, ok := NextRun(s, now, time.UTC); ok {
		t.Error("unknown schedule type must not get a next run")
	}
}

// 2024-01-01 is a Monday; London is on GMT (UTC+0) in January.
func TestNextRun_WeeklySameDayLaterTime(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := mustTime(t, "2024-01-01T08:00:00Z") // Monday 08:00 London
	s := models.Schedule{
		ScheduleType:   models.ScheduleWeekly,
		WeeklyDays:     []string{"MON"},
		TimeOfDayLocal: "09:00",
	}

	next, ok := NextRun(s, now, london)
	if !ok {
		t.Fatal("expected a next run")
	}
	// Today at 09:00 London, not next Monday.
	if want := mustTime(t, "2024-01-01T09:00:00Z"); !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextRun_WeeklyExactNowRollsToNextWeek(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := mustTime(t, "2024-01-01T09:00:00Z") // exactly Monday 09:00 London
	s := models.Schedule{
		ScheduleType:   models.ScheduleWeekly,
		WeeklyDays:     []string{"MON"},
		TimeOfDayLocal: "09:00",
	}

	next, ok := NextRun(s, now, london)
	if !ok {
		t.Fatal("expected a next run")
	}
	// A candidate equal to now must be rejected.
	if want := mustTime(t, "2024-01-08T09:00:00Z"); !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

// During British Summer Time the 09:00 local run is 08:00 UTC.
func TestNextRun_WeeklyDSTConversion(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := mustTime(t, "2024-07-01T06:00:00Z") // Monday 07:00 BST
	s := models.Schedule{
		ScheduleType:   models.ScheduleWeekly,
		WeeklyDays:     []string{"MON"},
		TimeOfDayLocal: "09:00",
	}

	next, ok := NextRun(s, now, london)
	if !ok {
		t.Fatal("expected a next run")
	}
	if want := mustTime(t, "2024-07-01T08:00:00Z"); !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextRun_WeeklyLowercaseLabels(t *testing.T) {
	now := mustTime(t, "2024-01-01T08:00:00Z") // Monday
	s := models.Schedule{
		ScheduleType:   models.ScheduleWeekly,
		WeeklyDays:     []string{"mon", " tue "},
		TimeOfDayLocal: "09:00",
	}

	next, ok := NextRun(s, now, time.UTC)
	if !ok {
		t.Fatal("expected a next run")
	}
	if want := mustTime(t, "2024-01-01T09:00:00Z"); !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextRun_WeeklyMalformedTimeDefaultsTo0900(t *testing.T) {
	now := mustTime(t, "2024-01-01T08:00:00Z") // Monday
	s := models.Schedule{
		ScheduleType:   models.ScheduleWeekly,
		WeeklyDays:     []string{"MON"},
		TimeOfDayLocal: "not-a-time",
	}

	next, ok := NextRun(s, now, time.UTC)
	if !ok {
		t.Fatal("expected a next run")
	}
	if want := mustTime(t, "2024-01-01T09:00:00Z"); !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextRun_WeeklyNoValidDaysFallsBackOneWeek(t *testing.T) {
	now := mustTime(t, "2024-01-01T08:00:00Z")

	for _, days := range [][]string{nil, {}, {"FUNDAY"}} {
		s := models.Schedule{
			ScheduleType:   models.ScheduleWeekly,
			WeeklyDays:     days,
			TimeOfDayLocal: "09:00",
		}
		next, ok := NextRun(s, now, time.UTC)
		if !ok {
			t.Fatalf("days=%v: expected a next run", days)
		}
		if want := now.Add(7 * 24 * time.Hour); !next.Equal(want) {
			t.Errorf("days=%v: got %v, want %v", days, next, want)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in         string
		hour, mins int
	}{
		{"09:00", 9, 0},
		{"23:59", 23, 59},
		{"0:05", 0, 5},
		{"", 9, 0},
		{"24:00", 9, 0},
		{"12:60", 9, 0},
		{"noon", 9, 0},
		{" 14:30 ", 14, 30},
	}
	for _, c := range cases {
		h, m := parseTimeOfDay(c.in)
		if h != c.hour || m != c.mins {
			t.Errorf("parseTimeOfDay(%q): got %d:%d, want %d:%d", c.in, h, m, c.hour, c.mins)
		}
	}
}
