package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/crucial707/mailprobe/internal/config"
	"github.com/crucial707/mailprobe/internal/db"
	"github.com/crucial707/mailprobe/internal/repo"
	"github.com/crucial707/mailprobe/internal/scheduler"
)

func main() {
	cfg := config.Load()

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		log.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	log.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	databaseURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(cfg.DBUser), url.QueryEscape(cfg.DBPass),
		cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err := db.Run(databaseURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	r, snd, err := newRouter(database, cfg, log)
	if err != nil {
		log.Error("router setup failed", "err", err)
		os.Exit(1)
	}

	store := &repo.Store{
		Schedules: repo.NewScheduleRepo(database),
		Settings:  repo.NewSettingsRepo(database),
	}
	sched := &scheduler.Scheduler{
		Evaluator: &scheduler.Evaluator{
			Store: store,
			Runner: &scheduler.Runner{
				Store: store,
				Send:  snd.SendForSchedule,
				Log:   log,
			},
			Log: log,
		},
		LockPath: filepath.Join(cfg.DataDir, scheduler.LockFileName),
		Interval: cfg.SchedulerInterval,
		Log:      log,
	}
	sched.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		log.Info("starting HTTPS server", "port", cfg.Port)
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		log.Info("starting HTTP server", "port", cfg.Port)
		err = srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
