package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CANCELLATION_WINDOW", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.CancellationWindow != 2*time.Hour {
		t.Fatalf("expected default cancellation window, got %s", cfg.CancellationWindow)
	}
	if cfg.PageSize != 20 {
		t.Fatalf("expected default page size, got %d", cfg.PageSize)
	}
	if cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue disabled by default")
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider by default, got %s", cfg.EmailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CANCELLATION_WINDOW", "90m")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("CANCELLATION_QUEUE_URL", "http://localhost:4566/000000000000/cancellations")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("EMAIL_PROVIDER", "sendgrid")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.CancellationWindow != 90*time.Minute {
		t.Fatalf("expected window override, got %s", cfg.CancellationWindow)
	}
	if !cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue enabled")
	}
	if cfg.CancellationQueueURL == "" {
		t.Fatalf("expected queue url override")
	}
	if cfg.WorkerCount != 4 {
		t.Fatalf("expected worker count override, got %d", cfg.WorkerCount)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected email provider override, got %s", cfg.EmailProvider)
	}
}
