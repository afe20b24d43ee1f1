package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_BYTES", "")
	t.Setenv("ALLOWED_EXTENSIONS", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")
	t.Setenv("RETRY_DELAY", "")
	t.Setenv("AI_SERVICE_TIMEOUT", "")
	t.Setenv("AI_SERVICE_HEALTH_TIMEOUT", "")

	cfg := Load()
	if cfg.MaxFileSizeBytes != 10<<20 {
		t.Fatalf("expected default max file size 10MiB, got %d", cfg.MaxFileSizeBytes)
	}
	if len(cfg.AllowedExtensions) != 1 || cfg.AllowedExtensions[0] != "pdf" {
		t.Fatalf("expected default allowed extensions [pdf], got %v", cfg.AllowedExtensions)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryDelay != time.Second {
		t.Fatalf("expected default retry delay 1s, got %s", cfg.RetryDelay)
	}
	if cfg.AiServiceTimeout != 30*time.Second {
		t.Fatalf("expected default ai timeout 30s, got %s", cfg.AiServiceTimeout)
	}
	if cfg.AiServiceHealthTimeout != 5*time.Second {
		t.Fatalf("expected default health timeout 5s, got %s", cfg.AiServiceHealthTimeout)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_BYTES", "1048576")
	t.Setenv("ALLOWED_EXTENSIONS", "PDF, txt ,")
	t.Setenv("AI_SERVICE_TIMEOUT", "45s")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	if cfg.MaxFileSizeBytes != 1<<20 {
		t.Fatalf("expected max file size override, got %d", cfg.MaxFileSizeBytes)
	}
	if len(cfg.AllowedExtensions) != 2 || cfg.AllowedExtensions[0] != "pdf" || cfg.AllowedExtensions[1] != "txt" {
		t.Fatalf("expected normalized extension list, got %v", cfg.AllowedExtensions)
	}
	if cfg.AiServiceTimeout != 45*time.Second {
		t.Fatalf("expected ai timeout 45s, got %s", cfg.AiServiceTimeout)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "many")
	t.Setenv("RETRY_DELAY", "soon")
	t.Setenv("MAX_FILE_SIZE_BYTES", "huge")

	cfg := Load()
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("malformed retry attempts must fall back, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryDelay != time.Second {
		t.Fatalf("malformed retry delay must fall back, got %s", cfg.RetryDelay)
	}
	if cfg.MaxFileSizeBytes != 10<<20 {
		t.Fatalf("malformed max file size must fall back, got %d", cfg.MaxFileSizeBytes)
	}
}
