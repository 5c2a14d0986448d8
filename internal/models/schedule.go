package models

import "time"

// Email types a schedule (or an immediate send) can produce.
const (
	EmailTypePhishing = "phishing"
	EmailTypeEICAR    = "eicar"
	EmailTypeCynic    = "cynic"
	EmailTypeGTUBE    = "gtube"
	EmailTypeCustom   = "custom"
)

// Schedule types.
const (
	ScheduleOneOff   = "one_off"
	ScheduleInterval = "interval"
	ScheduleWeekly   = "weekly"
)

// Last-run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxConsecutiveFailures is the number of consecutive failed runs after which
// a schedule is automatically disabled until an operator re-enables it.
const MaxConsecutiveFailures = 3

// Schedule is a stored email job: what to send, to whom, and when.
// NextRunUTC is always UTC; nil means "not yet computed" for repeating
// schedules, or "already consumed" for one-off ones.
type Schedule struct {
	ID             string   `json:"id"`
	Enabled        bool     `json:"enabled"`
	EmailType      string   `json:"email_type"`
	Recipients     []string `json:"recipients"`
	Count          int      `json:"count"`
	ScheduleType   string   `json:"schedule_type"`
	IntervalHours  float64  `json:"interval_hours,omitempty"`
	WeeklyDays     []string `json:"weekly_days,omitempty"`
	TimeOfDayLocal string   `json:"time_of_day_local,omitempty"`

	// ConfigName optionally binds the run to a named account configuration.
	ConfigName string `json:"config_name,omitempty"`

	// Template fields for email_type=custom; TemplateType selects the
	// phishing body variant for email_type=phishing.
	Subject        string `json:"subject,omitempty"`
	Body           string `json:"body,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	AttachmentType string `json:"attachment_type,omitempty"`
	TemplateType   string `json:"template_type,omitempty"`

	NextRunUTC   *time.Time `json:"next_run_utc"`
	LastRunUTC   *time.Time `json:"last_run_utc,omitempty"`
	LastStatus   string     `json:"last_status,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	FailureCount int        `json:"failure_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRepeating reports whether the schedule type fires more than once.
func (s *Schedule) IsRepeating() bool {
	return s.ScheduleType == ScheduleInterval || s.ScheduleType == ScheduleWeekly
}

// WeekdayLabels are the recognized weekly_days values, Monday first.
var WeekdayLabels = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}
