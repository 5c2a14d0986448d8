package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/mailprobe/internal/repo"
)

func TestSettingsHandler_GetSettings_Defaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs(repo.SettingTimezone).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs(repo.SettingCurrentAccount).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	h := &SettingsHandler{Repo: repo.NewSettingsRepo(db)}

	req := httptest.NewRequest("GET", "/settings", nil)
	rr := httptest.NewRecorder()
	h.GetSettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetSettings status: got %d", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["timezone"] != "UTC" {
		t.Errorf("timezone default: got %q, want UTC", out["timezone"])
	}
}

func TestSettingsHandler_UpdateSettings_InvalidTimezone(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &SettingsHandler{Repo: repo.NewSettingsRepo(db)}

	body := []byte(`{"timezone":"Mars/Olympus_Mons"}`)
	req := httptest.NewRequest("PUT", "/settings", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.UpdateSettings(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("UpdateSettings status: got %d, want 400", rr.Code)
	}
}

func TestSettingsHandler_UpdateSettings_Timezone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs(repo.SettingTimezone, "Europe/London").
		WillReturnResult(sqlmock.NewResult(1, 1))
	// Response re-reads the settings.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs(repo.SettingTimezone).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("Europe/London"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs(repo.SettingCurrentAccount).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	h := &SettingsHandler{Repo: repo.NewSettingsRepo(db)}

	body := []byte(`{"timezone":"Europe/London"}`)
	req := httptest.NewRequest("PUT", "/settings", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.UpdateSettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateSettings status: got %d", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["timezone"] != "Europe/London" {
		t.Errorf("timezone: got %q", out["timezone"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestHistoryHandler_ListHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email_type, subject, recipients, status, sent_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email_type", "subject", "recipients", "status", "sent_at"}).
			AddRow(1, "gtube", "GTUBE Spam Test Email", "{a@x.com}", "sent", time.Now().UTC()))

	h := &HistoryHandler{Repo: repo.NewHistoryRepo(db)}

	req := httptest.NewRequest("GET", "/history", nil)
	rr := httptest.NewRecorder()
	h.ListHistory(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListHistory status: got %d", rr.Code)
	}
	var list []struct {
		EmailType string `json:"email_type"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 1 || list[0].EmailType != "gtube" || list[0].Status != "sent" {
		t.Errorf("unexpected history: %+v", list)
	}
}
