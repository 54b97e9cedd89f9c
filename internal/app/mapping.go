package app

import (
	"strings"
	"time"

	"hwbot/internal/config"
	"hwbot/internal/homework"
	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	"hwbot/internal/practicum"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// The Telegram log sink writes to the recipient chat.
func mapLogConfig(cfg *config.Config, chatID int64) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			ChatID:     chatID,
			ThreadID:   cfg.Logging.Telegram.ThreadID,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

func mapNotifierConfig(cfg *config.Config, chatID int64) (notifier.Config, error) {
	timeout, err := config.ParseDurationOrDefault("telegram.send_timeout", cfg.Telegram.SendTimeout, 15*time.Second)
	if err != nil {
		return notifier.Config{}, err
	}
	return notifier.Config{
		Target:      kit.ChatTarget{ChatID: chatID, ThreadID: cfg.Telegram.ThreadID},
		RatePerSec:  cfg.Telegram.RatePerSec,
		SendTimeout: timeout,
	}, nil
}

// The request timeout defaults to the retry interval.
func mapPracticumConfig(cfg *config.Config, retry time.Duration) (practicum.Config, error) {
	timeout, err := config.ParseDurationOrDefault("practicum.request_timeout", cfg.Practicum.RequestTimeout, retry)
	if err != nil {
		return practicum.Config{}, err
	}
	endpoint := strings.TrimSpace(cfg.Practicum.Endpoint)
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	scheme := strings.TrimSpace(cfg.Practicum.AuthScheme)
	if scheme == "" {
		scheme = config.DefaultAuthScheme
	}
	return practicum.Config{
		Endpoint:   endpoint,
		Token:      cfg.Practicum.Token,
		AuthScheme: scheme,
		Timeout:    timeout,
	}, nil
}

// Without poll.from_date the cursor is the process start time.
func mapPollerConfig(cfg *config.Config, retry time.Duration, now time.Time) poller.Config {
	cursor := homework.Cursor(now.Unix())
	if cfg.Poll.FromDate != nil {
		cursor = homework.Cursor(*cfg.Poll.FromDate)
	}
	return poller.Config{
		RetryInterval: retry,
		Cursor:        cursor,
		FollowCursor:  cfg.Poll.FollowCursor,
	}
}
