package main

// Send due follow-up reminders once and exit:
//   go run ./cmd/remind

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"jobassist-backend/internal/bootstrap"
	"jobassist-backend/internal/reminders"
	"jobassist-backend/internal/shared/config"
)

const defaultRunTimeoutSec = 300

// runner is the part of reminders.Job this command drives.
type runner interface {
	Run(ctx context.Context) (reminders.Summary, error)
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	timeout := time.Duration(envInt("REMINDER_RUN_TIMEOUT_SECONDS", defaultRunTimeoutSec)) * time.Second
	if err := run(ctx, app.Reminders, timeout); err != nil {
		app.Close()
		log.Fatalf("reminders: %v", err)
	}
}

func run(ctx context.Context, job runner, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sum, err := job.Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("reminders due=%d sent=%d failed=%d", sum.Due, sum.Sent, sum.Failed)
	return nil
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
