package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/mailprobe/internal/models"
	"github.com/crucial707/mailprobe/internal/repo"
)

// ScheduleHandler handles email schedule CRUD.
type ScheduleHandler struct {
	Repo *repo.ScheduleRepo
}

// scheduleInput is the request body for create and update. Pointers
// distinguish "absent" from zero for the toggle fields.
type scheduleInput struct {
	Enabled        *bool    `json:"enabled"`
	EmailType      string   `json:"email_type"`
	Recipients     []string `json:"recipients"`
	Count          int      `json:"count"`
	ScheduleType   string   `json:"schedule_type"`
	IntervalHours  float64  `json:"interval_hours"`
	WeeklyDays     []string `json:"weekly_days"`
	TimeOfDayLocal string   `json:"time_of_day_local"`
	ConfigName     string   `json:"config_name"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	DisplayName    string   `json:"display_name"`
	AttachmentType string   `json:"attachment_type"`
	TemplateType   string   `json:"template_type"`
	NextRunUTC     string   `json:"next_run_utc"`
}

func validEmailType(t string) bool {
	switch t {
	case models.EmailTypePhishing, models.EmailTypeEICAR, models.EmailTypeCynic,
		models.EmailTypeGTUBE, models.EmailTypeCustom:
		return true
	}
	return false
}

func validScheduleType(t string) bool {
	switch t {
	case models.ScheduleOneOff, models.ScheduleInterval, models.ScheduleWeekly:
		return true
	}
	return false
}

// parseDueTime accepts RFC 3339 or a zone-less timestamp, which is taken
// as UTC.
func parseDueTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (in *scheduleInput) validate() map[string]string {
	fields := make(map[string]string)
	if in.EmailType == "" {
		fields["email_type"] = "required"
	} else if !validEmailType(in.EmailType) {
		fields["email_type"] = "must be one of phishing, eicar, cynic, gtube, custom"
	}
	if len(in.Recipients) == 0 {
		fields["recipients"] = "required"
	}
	if in.Count < 0 {
		fields["count"] = "must be positive"
	}
	if in.ScheduleType != "" && !validScheduleType(in.ScheduleType) {
		fields["schedule_type"] = "must be one of one_off, interval, weekly"
	}
	if in.ScheduleType == models.ScheduleInterval && in.IntervalHours < 0 {
		fields["interval_hours"] = "must not be negative"
	}
	if in.ScheduleType == models.ScheduleWeekly && len(in.WeeklyDays) == 0 {
		fields["weekly_days"] = "required for weekly schedules"
	}
	if in.EmailType == models.EmailTypeCustom {
		if in.Subject == "" {
			fields["subject"] = "required for custom emails"
		}
		if in.Body == "" {
			fields["body"] = "required for custom emails"
		}
	}
	if in.NextRunUTC != "" {
		if _, err := parseDueTime(in.NextRunUTC); err != nil {
			fields["next_run_utc"] = "must be an RFC 3339 timestamp"
		}
	}
	return fields
}

// apply copies the input onto a schedule record.
func (in *scheduleInput) apply(s *models.Schedule) {
	s.Enabled = true
	if in.Enabled != nil {
		s.Enabled = *in.Enabled
	}
	s.EmailType = in.EmailType
	s.Recipients = in.Recipients
	s.Count = in.Count
	s.ScheduleType = in.ScheduleType
	s.IntervalHours = in.IntervalHours
	s.WeeklyDays = in.WeeklyDays
	s.TimeOfDayLocal = in.TimeOfDayLocal
	s.ConfigName = in.ConfigName
	s.Subject = in.Subject
	s.Body = in.Body
	s.DisplayName = in.DisplayName
	s.AttachmentType = in.AttachmentType
	s.TemplateType = in.TemplateType
	if in.NextRunUTC != "" {
		due, _ := parseDueTime(in.NextRunUTC)
		s.NextRunUTC = &due
	}
}

// ListSchedules returns all schedules.
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Schedule{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GetSchedule returns one schedule by id.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if s == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// CreateSchedule creates a new schedule.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input scheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := input.validate(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	var s models.Schedule
	input.apply(&s)

	created, err := h.Repo.Upsert(r.Context(), s)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// UpdateSchedule replaces a schedule's configuration. Runtime state
// (failure count, last run, last status) is preserved; the due time is
// reset when the input carries one, otherwise cleared so the scheduler
// recomputes it from the new settings.
func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if existing == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}

	var input scheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := input.validate(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	s := *existing
	s.NextRunUTC = nil
	input.apply(&s)

	updated, err := h.Repo.Upsert(r.Context(), s)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteSchedule deletes a schedule. Deletion is immediate and permanent.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Repo.Delete(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if !deleted {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
