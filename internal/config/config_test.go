package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logx "hwbot/pkg/logx"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Parallel()
	cfg, err := Load(LoadOptions{LookupEnv: envMap(map[string]string{
		"PRACTICUM_TOKEN":  "p-token",
		"TELEGRAM_TOKEN":   "t-token",
		"TELEGRAM_CHAT_ID": "12345",
	})})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Practicum.Token != "p-token" || cfg.Telegram.Token != "t-token" || cfg.Telegram.ChatID != "12345" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	d, err := RetryInterval(cfg)
	if err != nil || d != 600*time.Second {
		t.Fatalf("RetryInterval = %v (%v), want 600s", d, err)
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Parallel()
	cfg, err := Load(LoadOptions{LookupEnv: envMap(map[string]string{
		"YA_TOKEN":   "p",
		"TG_TOKEN":   "t",
		"TG_CHAT_ID": "-100200",
	})})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	id, err := ChatID(cfg)
	if err != nil || id != -100200 {
		t.Fatalf("ChatID = %d (%v), want -100200", id, err)
	}
}

func TestLoadMissingRecipient(t *testing.T) {
	t.Parallel()
	_, err := Load(LoadOptions{LookupEnv: envMap(map[string]string{
		"PRACTICUM_TOKEN": "p",
		"TELEGRAM_TOKEN":  "t",
	})})
	if err == nil {
		t.Fatal("expected config error")
	}
	if !IsConfigError(err) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !strings.Contains(err.Error(), "telegram.chat_id") {
		t.Fatalf("error does not name the missing field: %v", err)
	}
}

func TestLoadReportsAllProblems(t *testing.T) {
	t.Parallel()
	_, err := Load(LoadOptions{LookupEnv: envMap(nil)})
	ce, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if len(ce.Problems) != 3 {
		t.Fatalf("problems = %v, want 3 missing identifiers", ce.Problems)
	}
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "hwbot.yaml", `
practicum:
  token: from-file
  endpoint: http://localhost:9999/api/
telegram:
  token: tg-file
  chat_id: "42"
  thread_id: 7
poll:
  retry_interval: 30s
  from_date: 0
  follow_cursor: true
logging:
  level: debug
`)
	cfg, err := Load(LoadOptions{Path: path, LookupEnv: envMap(map[string]string{"PRACTICUM_TOKEN": "from-env"})})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Practicum.Token != "from-env" {
		t.Fatalf("env should win, got %q", cfg.Practicum.Token)
	}
	if cfg.Telegram.ThreadID != 7 || cfg.Poll.FromDate == nil || *cfg.Poll.FromDate != 0 || !cfg.Poll.FollowCursor {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if d, _ := RetryInterval(cfg); d != 30*time.Second {
		t.Fatalf("RetryInterval = %v, want 30s", d)
	}
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	full := map[string]string{"PRACTICUM_TOKEN": "p", "TELEGRAM_TOKEN": "t", "TELEGRAM_CHAT_ID": "1"}
	noChat := map[string]string{"PRACTICUM_TOKEN": "p", "TELEGRAM_TOKEN": "t"}

	tests := []struct {
		name, file, body, want string
		env                    map[string]string
	}{
		{name: "unknown key", file: "a.json", body: `{"poll": {"interval": "1m"}}`, want: "unknown field", env: full},
		{name: "bad duration", file: "b.json", body: `{"poll": {"retry_interval": "soon"}}`, want: "poll.retry_interval", env: full},
		{name: "bad chat id", file: "c.yml", body: "telegram:\n  chat_id: abc\n", want: "telegram.chat_id", env: noChat},
		{name: "bad level", file: "d.json", body: `{"logging": {"level": "loud"}}`, want: "logging.level", env: full},
		{name: "trailing data", file: "e.json", body: `{} {}`, want: "trailing data", env: full},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, dir, tt.file, tt.body)
			_, err := Load(LoadOptions{Path: path, LookupEnv: envMap(tt.env)})
			if err == nil || !IsConfigError(err) {
				t.Fatalf("expected config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFileIsConfigError(t *testing.T) {
	t.Parallel()
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "absent.yaml"), LookupEnv: envMap(nil)})
	if !IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	// godotenv writes into the process environment; not parallel.
	for _, k := range []string{"PRACTICUM_TOKEN", "YA_TOKEN", "TELEGRAM_TOKEN", "TG_TOKEN", "TELEGRAM_CHAT_ID", "TG_CHAT_ID"} {
		if _, ok := os.LookupEnv(k); ok {
			t.Skipf("%s set in the test environment", k)
		}
	}
	t.Cleanup(func() {
		for _, k := range []string{"PRACTICUM_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
			_ = os.Unsetenv(k)
		}
	})

	envFile := writeFile(t, t.TempDir(), ".env", "PRACTICUM_TOKEN=p\nTELEGRAM_TOKEN=t\nTELEGRAM_CHAT_ID=99\n")
	cfg, err := Load(LoadOptions{EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Telegram.ChatID != "99" {
		t.Fatalf("chat id = %q, want 99", cfg.Telegram.ChatID)
	}
}

func TestLoadIgnoresMissingDotEnv(t *testing.T) {
	t.Parallel()
	_, err := Load(LoadOptions{
		EnvFile:   filepath.Join(t.TempDir(), ".env"),
		LookupEnv: envMap(map[string]string{"PRACTICUM_TOKEN": "p", "TELEGRAM_TOKEN": "t", "TELEGRAM_CHAT_ID": "1"}),
	})
	if err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	old := &Config{Logging: LoggingConfig{Level: "info"}, Telegram: TelegramConfig{Token: "secret", ChatID: "1"}}

	onlyLogging := *old
	onlyLogging.Logging.Level = "debug"
	changed, _ := SummarizeConfigChange(old, &onlyLogging)
	if len(changed) != 1 || changed[0] != "logging" || RequiresRestart(changed) {
		t.Fatalf("changed = %v", changed)
	}

	pollToo := onlyLogging
	pollToo.Poll.RetryInterval = "1m"
	changed, _ = SummarizeConfigChange(old, &pollToo)
	if !RequiresRestart(changed) {
		t.Fatalf("poll change should require restart: %v", changed)
	}

	changed, _ = SummarizeConfigChange(old, old)
	if len(changed) != 0 {
		t.Fatalf("identical configs reported changes: %v", changed)
	}
}

func TestWatcherReload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	body := `{"practicum": {"token": "p"}, "telegram": {"token": "t", "chat_id": "1"}, "logging": {"level": "info"}}`
	path := writeFile(t, dir, "hwbot.json", body)
	cur, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	ApplyEnv(cur, os.LookupEnv)

	w := NewWatcher(path, cur, nil, logx.Nop())
	var got *Config
	w.OnChange = func(_, n *Config) { got = n }

	if changed, err := w.Reload(); err != nil || changed {
		t.Fatalf("unchanged reload = (%v, %v)", changed, err)
	}

	writeFile(t, dir, "hwbot.json", strings.Replace(body, `"info"`, `"debug"`, 1))
	if changed, err := w.Reload(); err != nil || !changed {
		t.Fatalf("changed reload = (%v, %v)", changed, err)
	}
	if got == nil || got.Logging.Level != "debug" || w.Current() != got {
		t.Fatalf("OnChange not called with new config: %+v", got)
	}

	writeFile(t, dir, "hwbot.json", `{"logging": {"level": "loud"}}`)
	if _, err := w.Reload(); err == nil {
		t.Fatal("invalid config must be rejected")
	}
	if w.Current() != got {
		t.Fatal("rejected config must not be committed")
	}
}

func TestWatcherReloadUsesStartupEnvironment(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	env := envMap(map[string]string{
		"PRACTICUM_TOKEN":  "p-env",
		"TELEGRAM_TOKEN":   "t-env",
		"TELEGRAM_CHAT_ID": "7",
	})
	path := writeFile(t, dir, "hwbot.yaml", "logging:\n  level: info\n")
	cur, err := Load(LoadOptions{Path: path, LookupEnv: env})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	w := NewWatcher(path, cur, env, logx.Nop())
	writeFile(t, dir, "hwbot.yaml", "logging:\n  level: debug\n")
	changed, err := w.Reload()
	if err != nil || !changed {
		t.Fatalf("Reload = (%v, %v), want a valid change", changed, err)
	}
	got := w.Current()
	if got.Telegram.ChatID != "7" || got.Practicum.Token != "p-env" || got.Logging.Level != "debug" {
		t.Fatalf("reloaded config ignored the startup environment: %+v", got)
	}
}
