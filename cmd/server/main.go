package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"recbutton/internal/api"
	"recbutton/internal/clips"
	"recbutton/internal/config"
	"recbutton/internal/encoder"
	"recbutton/internal/player"
	"recbutton/internal/store"
	"recbutton/internal/sweeper"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Open SQLite.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// Initialize store.
	s, err := store.New(db)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	// Retention sweep runs once at startup when enabled.
	if cfg.Autodelete {
		slog.Info("autodelete enabled",
			"delete_after_days", cfg.DeleteAfterDays,
			"keep_renamed_files", cfg.KeepRenamedFiles)
		sw := sweeper.New(s, cfg.OutputDir)
		deleted, err := sw.Sweep(context.Background(), cfg.DeleteAfterDays, cfg.KeepRenamedFiles)
		if err != nil {
			slog.Error("retention sweep failed", "error", err, "deleted", deleted)
		} else {
			slog.Info("retention sweep complete", "deleted", deleted)
		}
	}

	// Build the player collaborator.
	var p player.Player
	if cfg.KodiURL != "" {
		slog.Info("using Kodi JSON-RPC player", "url", cfg.KodiURL)
		p = player.NewKodiClient(cfg.KodiURL,
			player.WithAuth(cfg.KodiUser, cfg.KodiPass),
			player.WithTimeout(cfg.HTTPTimeout))
	} else {
		slog.Info("KODI_URL not set, using stub player")
		p = &player.Stub{Playing: player.Item{Title: "Nothing"}}
	}

	enc := encoder.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.OutputDir, cfg.MBPerMin)
	svc := clips.New(s, p, enc, cfg.OutputDir)

	// Start API server.
	srv := api.New(svc, cfg.OutputDir, cfg.CORSOrigin)
	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down...")
		httpServer.Shutdown(context.Background())
	}()

	fmt.Printf("recbutton server listening on http://%s\n", cfg.Addr())
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
