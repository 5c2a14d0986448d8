package repo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/crucial707/mailprobe/internal/models"
)

// HistoryRepo persists the send history ring.
type HistoryRepo struct {
	DB *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{DB: db}
}

// Add records one entry and trims the ring to models.HistoryLimit entries.
func (r *HistoryRepo) Add(ctx context.Context, e models.HistoryEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO history (email_type, subject, recipients, status)
		VALUES ($1, $2, $3, $4)`,
		e.EmailType, e.Subject, pq.Array(e.Recipients), e.Status)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY sent_at DESC, id DESC LIMIT $1
		)`, models.HistoryLimit)
	return err
}

// List returns the most recent entries, newest first.
func (r *HistoryRepo) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > models.HistoryLimit {
		limit = models.HistoryLimit
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, email_type, subject, recipients, status, sent_at
		FROM history ORDER BY sent_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var recipients pq.StringArray
		if err := rows.Scan(&e.ID, &e.EmailType, &e.Subject, &recipients, &e.Status, &e.SentAt); err != nil {
			return nil, err
		}
		e.Recipients = []string(recipients)
		list = append(list, e)
	}
	return list, rows.Err()
}
