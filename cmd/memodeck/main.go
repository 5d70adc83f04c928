package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/conorfennell/memodeck/internal/config"
	"github.com/conorfennell/memodeck/internal/review"
	"github.com/conorfennell/memodeck/internal/storage"
	"github.com/conorfennell/memodeck/internal/sync"
	"github.com/conorfennell/memodeck/internal/web"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	store, err := storage.Open(cfg.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("database opened", "dsn", cfg.DSN)

	service := review.NewService(store, cfg.SettingsTTL)
	syncer := sync.New(store, cfg.ReposDir)

	// Re-sync card sources on a fixed interval; the first run happens at
	// startup so a fresh deployment has cards before any request lands.
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.SyncInterval).Do(func() {
		syncer.RunAll(context.Background())
	}); err != nil {
		return err
	}
	scheduler.StartAsync()
	defer scheduler.Stop()
	syncer.RunAll(context.Background())

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      web.NewServer(service, syncer, []byte(cfg.JWTSecret)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
