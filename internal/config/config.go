package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	RedisURL         string
	TelegramBotToken string
	APIKey           string

	HTTPPort          int
	SentimentPollSecs int
	FetchTimeoutSecs  int
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	if cfg.APIKey == "" {
		log.Println("Warning: API_KEY not set, refresh endpoint is unauthenticated")
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 65535 {
			cfg.HTTPPort = n
		}
	}

	cfg.SentimentPollSecs = 30
	if v := strings.TrimSpace(os.Getenv("SENTIMENT_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SentimentPollSecs = n
		}
	}

	cfg.FetchTimeoutSecs = 10
	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeoutSecs = n
		}
	}

	return cfg
}
