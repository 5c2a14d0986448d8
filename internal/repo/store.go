package repo

import (
	"context"

	"github.com/crucial707/mailprobe/internal/models"
)

// Store bundles the repos the scheduler consumes behind one value. It
// satisfies the scheduler.Store interface.
type Store struct {
	Schedules *ScheduleRepo
	Settings  *SettingsRepo
}

func (s *Store) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	return s.Schedules.List(ctx)
}

func (s *Store) UpsertSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	out, err := s.Schedules.Upsert(ctx, sc)
	if err != nil {
		return models.Schedule{}, err
	}
	return *out, nil
}

func (s *Store) Timezone(ctx context.Context) (string, error) {
	return s.Settings.Timezone(ctx)
}

func (s *Store) CurrentAccount(ctx context.Context) (string, error) {
	return s.Settings.CurrentAccount(ctx)
}

func (s *Store) SetCurrentAccount(ctx context.Context, name string) error {
	return s.Settings.SetCurrentAccount(ctx, name)
}
