package config

// Config is the process configuration. It is read once at startup; only the
// logging section is re-applied when the file changes (see Watcher).
//
// Durations are Go duration strings (e.g. "30s", "10m").
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poll      PollConfig      `json:"poll"`
	Logging   LoggingConfig   `json:"logging"`
}

// PracticumConfig describes the homework status API.
//
// Token may also come from PRACTICUM_TOKEN (or the legacy YA_TOKEN).
type PracticumConfig struct {
	Token    string `json:"token,omitempty"`
	Endpoint string `json:"endpoint,omitempty"` // default: DefaultEndpoint
	// AuthScheme prefixes the token in the Authorization header. Default "OAuth".
	AuthScheme string `json:"auth_scheme,omitempty"`
	// RequestTimeout bounds one status request. Default: poll.retry_interval.
	RequestTimeout string `json:"request_timeout,omitempty"`
}

// TelegramConfig describes the delivery channel and the single recipient.
//
// Token and ChatID may also come from TELEGRAM_TOKEN / TELEGRAM_CHAT_ID
// (or the legacy TG_TOKEN / TG_CHAT_ID).
type TelegramConfig struct {
	Token    string `json:"token,omitempty"`
	ChatID   string `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
	// APIURL overrides the Bot API base URL (default: https://api.telegram.org).
	APIURL      string `json:"api_url,omitempty"`
	RatePerSec  int    `json:"rate_per_sec,omitempty"`  // default 1
	SendTimeout string `json:"send_timeout,omitempty"` // default "15s"
}

// PollConfig controls the poll loop.
type PollConfig struct {
	// RetryInterval is the fixed pause between cycles. Default "600s".
	RetryInterval string `json:"retry_interval,omitempty"`
	// FromDate is the from_date cursor (unix seconds). Omitted means the
	// process start time.
	FromDate *int64 `json:"from_date,omitempty"`
	// FollowCursor adopts the API's current_date as the next cursor.
	// Off by default: the cursor stays where it started.
	FollowCursor bool `json:"follow_cursor,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingTelegram forwards log lines at or above MinLevel to the recipient chat.
type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

const (
	DefaultEndpoint      = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultAuthScheme    = "OAuth"
	DefaultRetryInterval = "600s"
)
