package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	logx "hwbot/pkg/logx"
)

// Environment variables. The second name of each pair is the legacy spelling.
var (
	envPracticumToken = []string{"PRACTICUM_TOKEN", "YA_TOKEN"}
	envTelegramToken  = []string{"TELEGRAM_TOKEN", "TG_TOKEN"}
	envTelegramChatID = []string{"TELEGRAM_CHAT_ID", "TG_CHAT_ID"}
	envLogLevel       = []string{"HWBOT_LOG_LEVEL"}
)

type LoadOptions struct {
	// Path is an optional JSON or YAML config file.
	Path string
	// EnvFile is an optional dotenv file. Variables already present in the
	// environment win over the file.
	EnvFile string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from the file, the dotenv file and the
// environment (in increasing precedence) and validates it. Every failure is
// returned as *Error.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}
	if strings.TrimSpace(opts.Path) != "" {
		parsed, err := ParseFile(opts.Path)
		if err != nil {
			return nil, &Error{Problems: []string{fmt.Sprintf("read %s: %v", opts.Path, err)}}
		}
		cfg = parsed
	}

	if envFile := strings.TrimSpace(opts.EnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Problems: []string{fmt.Sprintf("read %s: %v", envFile, err)}}
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	ApplyEnv(cfg, lookup)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseFile strictly decodes a JSON or YAML config file.
func ParseFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with any non-empty environment variable.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := firstEnv(lookup, envPracticumToken); ok {
		cfg.Practicum.Token = v
	}
	if v, ok := firstEnv(lookup, envTelegramToken); ok {
		cfg.Telegram.Token = v
	}
	if v, ok := firstEnv(lookup, envTelegramChatID); ok {
		cfg.Telegram.ChatID = v
	}
	if v, ok := firstEnv(lookup, envLogLevel); ok {
		cfg.Logging.Level = v
	}
}

func firstEnv(lookup func(string) (string, bool), names []string) (string, bool) {
	for _, n := range names {
		if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Validate checks required identifiers and field syntax.
func Validate(cfg *Config) error {
	e := &Error{}
	if cfg == nil {
		e.add("config is nil")
		return e
	}

	if strings.TrimSpace(cfg.Practicum.Token) == "" {
		e.add("practicum.token is required (env " + envPracticumToken[0] + ")")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		e.add("telegram.token is required (env " + envTelegramToken[0] + ")")
	}
	if strings.TrimSpace(cfg.Telegram.ChatID) == "" {
		e.add("telegram.chat_id is required (env " + envTelegramChatID[0] + ")")
	} else if _, err := ChatID(cfg); err != nil {
		e.add(err.Error())
	}

	if cfg.Telegram.ThreadID < 0 {
		e.add("telegram.thread_id must be >= 0")
	}
	if cfg.Telegram.RatePerSec < 0 {
		e.add("telegram.rate_per_sec must be >= 0")
	}
	if cfg.Logging.Telegram.RatePerSec < 0 {
		e.add("logging.telegram.rate_per_sec must be >= 0")
	}
	if !logx.ValidLevel(cfg.Logging.Level) {
		e.add(fmt.Sprintf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	if !logx.ValidLevel(cfg.Logging.Telegram.MinLevel) {
		e.add(fmt.Sprintf("logging.telegram.min_level: unknown level %q", cfg.Logging.Telegram.MinLevel))
	}
	if cfg.Poll.FromDate != nil && *cfg.Poll.FromDate < 0 {
		e.add("poll.from_date must be >= 0")
	}

	for _, d := range []struct{ path, raw string }{
		{"poll.retry_interval", cfg.Poll.RetryInterval},
		{"practicum.request_timeout", cfg.Practicum.RequestTimeout},
		{"telegram.send_timeout", cfg.Telegram.SendTimeout},
	} {
		if _, err := ParseDurationField(d.path, d.raw); err != nil {
			e.add(err.Error())
		}
	}
	return e.orNil()
}

// ChatID parses telegram.chat_id.
func ChatID(cfg *Config) (int64, error) {
	raw := strings.TrimSpace(cfg.Telegram.ChatID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("telegram.chat_id: invalid chat id %q", raw)
	}
	return id, nil
}
