package config

import (
	"strings"

	logx "hwbot/pkg/logx"
)

// SummarizeConfigChange returns (1) the changed sections and (2) safe
// structured attrs for logging. Tokens are never included.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Practicum.Token != newCfg.Practicum.Token ||
		strings.TrimSpace(oldCfg.Practicum.Endpoint) != strings.TrimSpace(newCfg.Practicum.Endpoint) ||
		strings.TrimSpace(oldCfg.Practicum.AuthScheme) != strings.TrimSpace(newCfg.Practicum.AuthScheme) ||
		strings.TrimSpace(oldCfg.Practicum.RequestTimeout) != strings.TrimSpace(newCfg.Practicum.RequestTimeout) {
		changed = append(changed, "practicum")
		attrs = append(attrs,
			logx.String("practicum.endpoint", strings.TrimSpace(newCfg.Practicum.Endpoint)),
			logx.Bool("practicum.token_changed", oldCfg.Practicum.Token != newCfg.Practicum.Token),
		)
	}

	if oldCfg.Telegram.Token != newCfg.Telegram.Token ||
		strings.TrimSpace(oldCfg.Telegram.ChatID) != strings.TrimSpace(newCfg.Telegram.ChatID) ||
		oldCfg.Telegram.ThreadID != newCfg.Telegram.ThreadID ||
		strings.TrimSpace(oldCfg.Telegram.APIURL) != strings.TrimSpace(newCfg.Telegram.APIURL) ||
		oldCfg.Telegram.RatePerSec != newCfg.Telegram.RatePerSec ||
		strings.TrimSpace(oldCfg.Telegram.SendTimeout) != strings.TrimSpace(newCfg.Telegram.SendTimeout) {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.String("telegram.chat_id", strings.TrimSpace(newCfg.Telegram.ChatID)),
			logx.Bool("telegram.token_changed", oldCfg.Telegram.Token != newCfg.Telegram.Token),
		)
	}

	if strings.TrimSpace(oldCfg.Poll.RetryInterval) != strings.TrimSpace(newCfg.Poll.RetryInterval) ||
		!sameFromDate(oldCfg.Poll.FromDate, newCfg.Poll.FromDate) ||
		oldCfg.Poll.FollowCursor != newCfg.Poll.FollowCursor {
		changed = append(changed, "poll")
		attrs = append(attrs,
			logx.String("poll.retry_interval", strings.TrimSpace(newCfg.Poll.RetryInterval)),
			logx.Bool("poll.follow_cursor", newCfg.Poll.FollowCursor),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logging.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}

	return changed, attrs
}

// RequiresRestart reports whether any changed section is one that is only
// read at startup.
func RequiresRestart(changed []string) bool {
	for _, s := range changed {
		if s != "logging" {
			return true
		}
	}
	return false
}

func sameFromDate(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
