// Package scheduler runs stored email schedules in the background.
//
// It evaluates the schedules in the store every tick and hands due ones to
// a runner that invokes the send operation and writes run bookkeeping back.
// A file lock guarantees that only one process per host executes ticks even
// when several API processes share the same database.
package scheduler

import (
	"context"

	"github.com/crucial707/mailprobe/internal/models"
)

// Store is the slice of persistence the scheduler needs. *repo.Store
// implements it; tests use an in-memory fake. The scheduler never assumes
// it is the only writer: every tick re-reads, and every mutation goes
// through the atomic upsert.
type Store interface {
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	UpsertSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error)
	Timezone(ctx context.Context) (string, error)
	CurrentAccount(ctx context.Context) (string, error)
	SetCurrentAccount(ctx context.Context, name string) error
}

// SendFunc executes one generate-and-send operation for a schedule. It
// should report failures through the result rather than panicking, but the
// runner tolerates a panic anyway.
type SendFunc func(ctx context.Context, s models.Schedule) models.SendResult
