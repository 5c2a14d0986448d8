package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/mailprobe/internal/models"
)

// defaultIntervalHours is used when an interval schedule has a missing or
// malformed interval.
const defaultIntervalHours = 24

// cron day-of-week numbers, Sunday=0.
var weekdayNumbers = map[string]int{
	"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
}

// NextRun computes the next due UTC instant for a schedule after a run at
// now. ok is false for one-off and unknown schedule types, which never
// repeat; the caller is expected to disable such schedules.
//
// Interval schedules reschedule relative to now, not to any original base
// time, so delays accumulate rather than catch up.
func NextRun(s models.Schedule, now time.Time, loc *time.Location) (next time.Time, ok bool) {
	switch s.ScheduleType {
	case models.ScheduleInterval:
		hours := s.IntervalHours
		if hours <= 0 {
			hours = defaultIntervalHours
		}
		return now.UTC().Add(time.Duration(hours * float64(time.Hour))), true

	case models.ScheduleWeekly:
		return nextWeekly(s, now, loc), true

	default:
		// one_off and anything unrecognized: do not reschedule.
		return time.Time{}, false
	}
}

// nextWeekly finds the first instant strictly after now that falls on one of
// the schedule's weekdays at its local time of day, expressed in UTC. The
// weekday/time matching runs in loc; misconfigured schedules (no valid days)
// fall back to one week from now.
func nextWeekly(s models.Schedule, now time.Time, loc *time.Location) time.Time {
	hour, minute := parseTimeOfDay(s.TimeOfDayLocal)

	days := normalizeWeekdays(s.WeeklyDays)
	if len(days) == 0 {
		return now.UTC().Add(7 * 24 * time.Hour)
	}

	spec := fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(days, ","))
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return now.UTC().Add(7 * 24 * time.Hour)
	}

	// cron.Next is strictly after its argument, so a candidate equal to
	// "now" is never returned and the job cannot re-fire within its tick.
	next := sched.Next(now.In(loc))
	if next.IsZero() {
		return now.UTC().Add(7 * 24 * time.Hour)
	}
	return next.UTC()
}

// normalizeWeekdays upper-cases labels and maps them to cron day numbers,
// dropping anything unrecognized.
func normalizeWeekdays(labels []string) []string {
	var out []string
	for _, l := range labels {
		if n, ok := weekdayNumbers[strings.ToUpper(strings.TrimSpace(l))]; ok {
			out = append(out, strconv.Itoa(n))
		}
	}
	return out
}

// parseTimeOfDay parses "HH:MM", tolerating malformed input by falling back
// to 09:00.
func parseTimeOfDay(s string) (hour, minute int) {
	hour, minute = 9, 0
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return hour, minute
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 9, 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 9, 0
	}
	return h, m
}
