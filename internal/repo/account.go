package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/mailprobe/internal/models"
)

// AccountRepo persists named email account configurations. Password values
// are stored exactly as given; callers encrypt them via internal/secrets
// before writing and decrypt after reading.
type AccountRepo struct {
	DB *sql.DB
}

// NewAccountRepo returns a new AccountRepo.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{DB: db}
}

const accountCols = `name, smtp_server, smtp_port, username, password,
	use_tls, use_ssl, imap_server, imap_port, created_at, updated_at`

// List returns all accounts ordered by name.
func (r *AccountRepo) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+accountCols+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.Name, &a.SMTPServer, &a.SMTPPort, &a.Username, &a.Password,
			&a.UseTLS, &a.UseSSL, &a.IMAPServer, &a.IMAPPort, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByName returns one account, or nil if it does not exist.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*models.Account, error) {
	a := &models.Account{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE name = $1`, name).
		Scan(&a.Name, &a.SMTPServer, &a.SMTPPort, &a.Username, &a.Password,
			&a.UseTLS, &a.UseSSL, &a.IMAPServer, &a.IMAPPort, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Upsert inserts or replaces an account by name and returns the stored record.
func (r *AccountRepo) Upsert(ctx context.Context, a models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (name, smtp_server, smtp_port, username, password,
			use_tls, use_ssl, imap_server, imap_port)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			smtp_server = EXCLUDED.smtp_server,
			smtp_port = EXCLUDED.smtp_port,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			use_tls = EXCLUDED.use_tls,
			use_ssl = EXCLUDED.use_ssl,
			imap_server = EXCLUDED.imap_server,
			imap_port = EXCLUDED.imap_port,
			updated_at = now()
		RETURNING ` + accountCols

	out := &models.Account{}
	err := r.DB.QueryRowContext(ctx, query,
		a.Name, a.SMTPServer, a.SMTPPort, a.Username, a.Password,
		a.UseTLS, a.UseSSL, a.IMAPServer, a.IMAPPort).
		Scan(&out.Name, &out.SMTPServer, &out.SMTPPort, &out.Username, &out.Password,
			&out.UseTLS, &out.UseSSL, &out.IMAPServer, &out.IMAPPort, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an account by name.
func (r *AccountRepo) Delete(ctx context.Context, name string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM accounts WHERE name = $1`, name)
	return err
}
