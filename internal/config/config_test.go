package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REDIS_URL", "TELEGRAM_BOT_TOKEN", "API_KEY",
		"HTTP_PORT", "SENTIMENT_POLL_SECS", "FETCH_TIMEOUT_SECS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("unexpected redis default: %s", cfg.RedisURL)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected port default: %d", cfg.HTTPPort)
	}
	if cfg.SentimentPollSecs != 30 {
		t.Fatalf("unexpected poll default: %d", cfg.SentimentPollSecs)
	}
	if cfg.FetchTimeoutSecs != 10 {
		t.Fatalf("unexpected timeout default: %d", cfg.FetchTimeoutSecs)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SENTIMENT_POLL_SECS", "15")
	t.Setenv("FETCH_TIMEOUT_SECS", "5")
	t.Setenv("API_KEY", " secret ")

	cfg := Load()
	if cfg.RedisURL != "redis://cache:6379" {
		t.Fatalf("unexpected redis url: %s", cfg.RedisURL)
	}
	if cfg.HTTPPort != 9090 || cfg.SentimentPollSecs != 15 || cfg.FetchTimeoutSecs != 5 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("expected trimmed api key, got %q", cfg.APIKey)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("SENTIMENT_POLL_SECS", "-3")
	t.Setenv("FETCH_TIMEOUT_SECS", "0")

	cfg := Load()
	if cfg.HTTPPort != 8080 || cfg.SentimentPollSecs != 30 || cfg.FetchTimeoutSecs != 10 {
		t.Fatalf("invalid values must fall back to defaults: %+v", cfg)
	}
}
