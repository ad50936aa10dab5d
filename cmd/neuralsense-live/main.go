package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/neuralsense/fusion/internal/app"
	"github.com/neuralsense/fusion/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("neuralsense starting")

	cfg := config.Load()

	application, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("neuralsense exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("neuralsense stopped")
}
