package repo

import (
	"context"
	"database/sql"
)

// Setting keys.
const (
	SettingTimezone       = "timezone"
	SettingCurrentAccount = "current_account"
)

// DefaultTimezone is used when no timezone has been configured.
const DefaultTimezone = "UTC"

// SettingsRepo persists process-wide settings: the timezone used for weekly
// schedule computation and the name of the currently active account.
type SettingsRepo struct {
	DB *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{DB: db}
}

func (r *SettingsRepo) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsRepo) set(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}

// Timezone returns the configured IANA timezone, defaulting to UTC.
func (r *SettingsRepo) Timezone(ctx context.Context) (string, error) {
	tz, err := r.get(ctx, SettingTimezone)
	if err != nil {
		return "", err
	}
	if tz == "" {
		return DefaultTimezone, nil
	}
	return tz, nil
}

// SetTimezone stores the IANA timezone. It takes effect on the next
// schedule computation; nothing is cached across ticks.
func (r *SettingsRepo) SetTimezone(ctx context.Context, tz string) error {
	return r.set(ctx, SettingTimezone, tz)
}

// CurrentAccount returns the name of the active account configuration,
// or "" when none has been selected.
func (r *SettingsRepo) CurrentAccount(ctx context.Context) (string, error) {
	return r.get(ctx, SettingCurrentAccount)
}

// SetCurrentAccount switches the active account configuration.
func (r *SettingsRepo) SetCurrentAccount(ctx context.Context, name string) error {
	return r.set(ctx, SettingCurrentAccount, name)
}
