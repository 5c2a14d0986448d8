package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/mailprobe/internal/models"
)

var accountTestCols = []string{
	"name", "smtp_server", "smtp_port", "username", "password",
	"use_tls", "use_ssl", "imap_server", "imap_port", "created_at", "updated_at",
}

func TestAccountRepo_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("work", "smtp.gmail.com", 587, "probe@gmail.com", "encrypted:abc",
			true, false, "imap.gmail.com", 993).
		WillReturnRows(sqlmock.NewRows(accountTestCols).
			AddRow("work", "smtp.gmail.com", 587, "probe@gmail.com", "encrypted:abc",
				true, false, "imap.gmail.com", 993, now, now))

	repo := NewAccountRepo(db)
	out, err := repo.Upsert(context.Background(), models.Account{
		Name: "work", SMTPServer: "smtp.gmail.com", SMTPPort: 587,
		Username: "probe@gmail.com", Password: "encrypted:abc",
		UseTLS: true, IMAPServer: "imap.gmail.com", IMAPPort: 993,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if out.Name != "work" || out.SMTPPort != 587 || !out.UseTLS {
		t.Errorf("unexpected account: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAccountRepo_GetByName_NotFoundIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT name, smtp_server`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(accountTestCols))

	repo := NewAccountRepo(db)
	a, err := repo.GetByName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if a != nil {
		t.Errorf("expected nil for missing account, got %+v", a)
	}
}

func TestAccountRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT name, smtp_server`).
		WillReturnRows(sqlmock.NewRows(accountTestCols).
			AddRow("burst", "mail.gmx.com", 587, "probe@gmx.net", "",
				true, false, "", 0, now, now).
			AddRow("default", "smtp.aol.com", 465, "probe@aol.com", "",
				true, true, "", 0, now, now))

	repo := NewAccountRepo(db)
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "burst" || !list[1].UseSSL {
		t.Errorf("unexpected accounts: %+v", list)
	}
}
