package handlers

import (
	"bytes"
	"context"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
)

func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

var scheduleColNames = []string{
	"id", "enabled", "email_type", "recipients", "count", "schedule_type",
	"interval_hours", "weekly_days", "time_of_day_local", "config_name",
	"subject", "body", "display_name", "attachment_type", "template_type",
	"next_run_utc", "last_run_utc", "last_status", "last_error", "failure_count",
	"created_at", "updated_at",
}

// scheduleRow builds a row for the schedule column set with sane defaults.
func scheduleRow(id, emailType, scheduleType string) []driverValue {
	now := time.Now()
	return []driverValue{
		id, true, emailType, "{ops@example.test}", 1, scheduleType,
		nil, "{}", "", "",
		"", "", "", "", "",
		nil, nil, "", "", 0,
		now, now,
	}
}

type driverValue = driver.Value

func addScheduleRow(rows *sqlmock.Rows, vals []driverValue) *sqlmock.Rows {
	return rows.AddRow(vals...)
}
