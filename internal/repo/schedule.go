package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/crucial707/mailprobe/internal/models"
)

// ScheduleRepo persists email schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

const scheduleCols = `id, enabled, email_type, recipients, count, schedule_type,
	interval_hours, weekly_days, time_of_day_local, config_name,
	subject, body, display_name, attachment_type, template_type,
	next_run_utc, last_run_utc, last_status, last_error, failure_count,
	created_at, updated_at`

// List returns all schedules in stable creation order. The scheduler
// evaluates them in this order each tick.
func (r *ScheduleRepo) List(ctx context.Context) ([]models.Schedule, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+scheduleCols+` FROM schedules ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// GetByID returns one schedule by id, or nil if it does not exist.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+scheduleCols+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert atomically inserts or replaces a schedule and returns the stored
// record. A missing id is generated; missing email_type, count, and
// schedule_type get their defaults. Both operator edits and post-run
// bookkeeping go through this single primitive.
func (r *ScheduleRepo) Upsert(ctx context.Context, s models.Schedule) (*models.Schedule, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.EmailType == "" {
		s.EmailType = models.EmailTypePhishing
	}
	if s.Count <= 0 {
		s.Count = 1
	}
	if s.ScheduleType == "" {
		s.ScheduleType = models.ScheduleOneOff
	}

	var intervalHours sql.NullFloat64
	if s.IntervalHours > 0 {
		intervalHours = sql.NullFloat64{Float64: s.IntervalHours, Valid: true}
	}

	query := `
		INSERT INTO schedules (id, enabled, email_type, recipients, count, schedule_type,
			interval_hours, weekly_days, time_of_day_local, config_name,
			subject, body, display_name, attachment_type, template_type,
			next_run_utc, last_run_utc, last_status, last_error, failure_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			email_type = EXCLUDED.email_type,
			recipients = EXCLUDED.recipients,
			count = EXCLUDED.count,
			schedule_type = EXCLUDED.schedule_type,
			interval_hours = EXCLUDED.interval_hours,
			weekly_days = EXCLUDED.weekly_days,
			time_of_day_local = EXCLUDED.time_of_day_local,
			config_name = EXCLUDED.config_name,
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			display_name = EXCLUDED.display_name,
			attachment_type = EXCLUDED.attachment_type,
			template_type = EXCLUDED.template_type,
			next_run_utc = EXCLUDED.next_run_utc,
			last_run_utc = EXCLUDED.last_run_utc,
			last_status = EXCLUDED.last_status,
			last_error = EXCLUDED.last_error,
			failure_count = EXCLUDED.failure_count,
			updated_at = now()
		RETURNING ` + scheduleCols

	row := r.DB.QueryRowContext(ctx, query,
		s.ID, s.Enabled, s.EmailType, pq.Array(s.Recipients), s.Count, s.ScheduleType,
		intervalHours, pq.Array(s.WeeklyDays), s.TimeOfDayLocal, s.ConfigName,
		s.Subject, s.Body, s.DisplayName, s.AttachmentType, s.TemplateType,
		s.NextRunUTC, s.LastRunUTC, s.LastStatus, s.LastError, s.FailureCount,
	)
	return scanSchedule(row)
}

// Delete removes a schedule by id. Deletion is immediate and permanent.
// Returns true when a row was actually removed.
func (r *ScheduleRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	s := &models.Schedule{}
	var (
		recipients    pq.StringArray
		weeklyDays    pq.StringArray
		intervalHours sql.NullFloat64
		nextRun       sql.NullTime
		lastRun       sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.Enabled, &s.EmailType, &recipients, &s.Count, &s.ScheduleType,
		&intervalHours, &weeklyDays, &s.TimeOfDayLocal, &s.ConfigName,
		&s.Subject, &s.Body, &s.DisplayName, &s.AttachmentType, &s.TemplateType,
		&nextRun, &lastRun, &s.LastStatus, &s.LastError, &s.FailureCount,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Recipients = []string(recipients)
	s.WeeklyDays = []string(weeklyDays)
	if intervalHours.Valid {
		s.IntervalHours = intervalHours.Float64
	}
	if nextRun.Valid {
		t := nextRun.Time.UTC()
		s.NextRunUTC = &t
	}
	if lastRun.Valid {
		t := lastRun.Time.UTC()
		s.LastRunUTC = &t
	}
	return s, nil
}
