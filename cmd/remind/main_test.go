package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobassist-backend/internal/reminders"
)

type fakeRunner struct {
	sum      reminders.Summary
	err      error
	deadline bool
}

func (f *fakeRunner) Run(ctx context.Context) (reminders.Summary, error) {
	_, f.deadline = ctx.Deadline()
	return f.sum, f.err
}

func TestRunAppliesTimeout(t *testing.T) {
	f := &fakeRunner{sum: reminders.Summary{Due: 2, Sent: 2}}
	if err := run(context.Background(), f, time.Minute); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !f.deadline {
		t.Fatalf("expected a deadline on the run context")
	}
}

func TestRunReturnsSourceError(t *testing.T) {
	f := &fakeRunner{err: errors.New("db down")}
	if err := run(context.Background(), f, time.Minute); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("REMIND_TEST_INT", "")
	if got := envInt("REMIND_TEST_INT", 7); got != 7 {
		t.Fatalf("default: got %d", got)
	}
	t.Setenv("REMIND_TEST_INT", "42")
	if got := envInt("REMIND_TEST_INT", 7); got != 42 {
		t.Fatalf("parsed: got %d", got)
	}
	t.Setenv("REMIND_TEST_INT", "nope")
	if got := envInt("REMIND_TEST_INT", 7); got != 7 {
		t.Fatalf("invalid: got %d", got)
	}
}
