package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/mailprobe/internal/config"
	"github.com/crucial707/mailprobe/internal/generators"
	"github.com/crucial707/mailprobe/internal/handlers"
	"github.com/crucial707/mailprobe/internal/middleware"
	"github.com/crucial707/mailprobe/internal/repo"
	"github.com/crucial707/mailprobe/internal/secrets"
	"github.com/crucial707/mailprobe/internal/sender"
)

// maxRequestBody bounds request bodies; the largest legal payload is a
// schedule with a custom body, well under this.
const maxRequestBody = 1 << 20

// newRouter assembles the HTTP API. It returns the router together with
// the sender so main can hand the same sender to the scheduler.
func newRouter(db *sql.DB, cfg config.Config, log *slog.Logger) (chi.Router, *sender.Sender, error) {
	keychain, err := secrets.Load(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	users := repo.NewUserRepo(db)
	schedules := repo.NewScheduleRepo(db)
	accounts := repo.NewAccountRepo(db)
	settings := repo.NewSettingsRepo(db)
	history := repo.NewHistoryRepo(db)

	gen := &generators.Generator{SevenZipPath: cfg.SevenZipPath}
	snd := sender.New(accounts, settings, history, keychain, gen, log)

	authH := &handlers.AuthHandler{UserRepo: users, Secret: []byte(cfg.JWTSecret), ExpireHours: cfg.JWTExpireHours}
	scheduleH := &handlers.ScheduleHandler{Repo: schedules}
	sendH := &handlers.SendHandler{Sender: snd}
	accountH := &handlers.AccountHandler{Repo: accounts, Settings: settings, Keychain: keychain}
	settingsH := &handlers.SettingsHandler{Repo: settings}
	historyH := &handlers.HistoryHandler{Repo: history}
	userH := &handlers.UserHandler{Repo: users}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(maxRequestBody))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", scheduleH.ListSchedules)
			r.Post("/", scheduleH.CreateSchedule)
			r.Get("/{id}", scheduleH.GetSchedule)
			r.Put("/{id}", scheduleH.UpdateSchedule)
			r.Delete("/{id}", scheduleH.DeleteSchedule)
		})

		r.Post("/send/{type}", sendH.Send)
		r.Post("/test-email", sendH.TestEmail)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountH.ListAccounts)
			r.Get("/{name}", accountH.GetAccount)
			r.Post("/{name}", accountH.UpsertAccount)
			r.Post("/{name}/activate", accountH.ActivateAccount)
			r.Delete("/{name}", accountH.DeleteAccount)
		})

		r.Get("/settings", settingsH.GetSettings)
		r.Put("/settings", settingsH.UpdateSettings)

		r.Get("/history", historyH.ListHistory)

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", userH.ListUsers)
			r.Get("/{id}", userH.GetUser)
			r.Delete("/{id}", userH.DeleteUser)
		})
	})

	return r, snd, nil
}
