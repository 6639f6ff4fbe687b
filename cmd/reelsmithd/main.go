package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reelsmith/reelsmith/internal/api"
	"github.com/reelsmith/reelsmith/internal/config"
	"github.com/reelsmith/reelsmith/internal/delivery"
	"github.com/reelsmith/reelsmith/internal/ffmpeg"
	"github.com/reelsmith/reelsmith/internal/logging"
	"github.com/reelsmith/reelsmith/internal/pipeline"
	"github.com/reelsmith/reelsmith/internal/transcribe"
)

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "reelsmithd",
		Short:        "Render vertical, captioned short-form videos from source URLs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.WorkDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting reelsmith server",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"webhook_configured", cfg.WebhookURL() != "",
	)

	notifier := delivery.NewNotifier(cfg.WebhookURL(), cfg.LegacyCallbackURL(), logger)
	tools := ffmpeg.NewAdapter(cfg.FFmpegBin(), cfg.StageTimeout(), logger)

	whisperBin := cfg.WhisperBin()
	whisperModel := cfg.WhisperModel()
	stageTimeout := cfg.StageTimeout()

	runner := pipeline.NewRunner(pipeline.Config{
		Video: tools,
		Engine: func() (transcribe.Engine, error) {
			return transcribe.Shared(whisperBin, whisperModel, stageTimeout)
		},
		Notify:          notifier,
		WorkRoot:        cfg.WorkDir(),
		DownloadTimeout: cfg.DownloadTimeout(),
		Logger:          logger,
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		AuthToken: cfg.AuthToken(),
		Runner:    runner,
		Notifier:  notifier,
		Logger:    logger,
		StartTime: startTime,
		Version:   config.Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
