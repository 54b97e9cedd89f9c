package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"hwbot/internal/config"
	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	"hwbot/internal/practicum"
	"hwbot/internal/runtime/supervisor"
	telegram "hwbot/internal/transport/telegram/adapter"
	logx "hwbot/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	ConfigPath string
	EnvFile    string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Now defaults to time.Now. It picks the initial cursor.
	Now func() time.Time
}

type App struct {
	cfgPath string
	cfg     *config.Config

	log  logx.Logger
	logs *logx.Service

	adapter *telegram.Adapter
	notif   *notifier.Service
	client  *practicum.Client
	poller  *poller.Poller
	watcher *config.Watcher

	chatID int64
	// stallLimit bounds one working state of a cycle (fetch, or send).
	stallLimit time.Duration
	sup        *supervisor.Supervisor
}

// New loads the configuration and wires every component. A *config.Error
// is returned before any network activity when configuration is incomplete.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:      opts.ConfigPath,
		EnvFile:   opts.EnvFile,
		LookupEnv: opts.LookupEnv,
	})
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	chatID, err := config.ChatID(cfg)
	if err != nil {
		return nil, &config.Error{Problems: []string{err.Error()}}
	}
	ncfg, err := mapNotifierConfig(cfg, chatID)
	if err != nil {
		return nil, err
	}

	bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram"))
	ad, err := telegram.New(telegram.Config{
		Token:   cfg.Telegram.Token,
		APIURL:  cfg.Telegram.APIURL,
		Timeout: ncfg.SendTimeout,
	}, bootLog)
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg, chatID), ad)
	appLog := log.With(logx.String("comp", "app"))

	notif := notifier.New(ncfg, ad, log.With(logx.String("comp", "notifier")))

	retry, err := config.RetryInterval(cfg)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	pcfg, err := mapPracticumConfig(cfg, retry)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	client, err := practicum.New(pcfg, log.With(logx.String("comp", "practicum")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	p, err := poller.New(mapPollerConfig(cfg, retry, now()), client, notif, log.With(logx.String("comp", "poller")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	a := &App{
		cfgPath:    opts.ConfigPath,
		cfg:        cfg,
		log:        appLog,
		logs:       logSvc,
		adapter:    ad,
		notif:      notif,
		client:     client,
		poller:     p,
		chatID:     chatID,
		stallLimit: stallLimit(pcfg.Timeout, ncfg.SendTimeout),
	}
	if strings.TrimSpace(opts.ConfigPath) != "" {
		a.watcher = config.NewWatcher(opts.ConfigPath, cfg, opts.LookupEnv, log.With(logx.String("comp", "config")))
		a.watcher.OnChange = a.applyConfig
	}

	appLog.Info("configured",
		logx.String("endpoint", pcfg.Endpoint),
		logx.Int64("chat_id", chatID),
		logx.Duration("retry_interval", retry),
		logx.Duration("request_timeout", pcfg.Timeout),
		logx.Int64("from_date", int64(p.Cursor())),
		logx.Bool("follow_cursor", cfg.Poll.FollowCursor),
		logx.Bool("config_watch", a.watcher != nil),
	)
	return a, nil
}

func (a *App) Poller() *poller.Poller { return a.poller }

// Run starts the poll loop and blocks until ctx is done or a component
// fails. The returned error is the first component failure, if any.
func (a *App) Run(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)

	a.sup.Go("poller", a.poller.Run)
	if a.watcher != nil {
		a.sup.GoRestart("config.watch", a.watcher.Watch)
	}
	if iv := watchdogInterval(a.log); iv > 0 {
		alive := func() bool { return !a.poller.Stalled(a.stallLimit) }
		ping := func() { sdNotify(a.log, sdWatchdog) }
		a.sup.Go0("systemd.watchdog", func(c context.Context) { runWatchdog(c, iv, a.log, alive, ping) })
	}
	sdNotify(a.log, sdReady)

	<-a.sup.Context().Done()
	sdNotify(a.log, sdStopping)
	a.log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.sup.Wait(stopCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("shutdown timed out", logx.Duration("timeout", shutdownTimeout))
	}

	c := a.sup.Counters()
	attempts, failed := deliverySummary(a.notif.Snapshot())
	a.log.Info("stopped",
		logx.Int64("goroutines_left", c.Active),
		logx.Uint64("goroutines_started", c.Started),
		logx.Int("recent_deliveries", attempts),
		logx.Int("recent_delivery_failures", failed),
	)
	return err
}

// deliverySummary counts the attempts and failures in a notifier history.
func deliverySummary(history []notifier.HistoryItem) (attempts, failed int) {
	for _, it := range history {
		if it.Error != "" {
			failed++
		}
	}
	return len(history), failed
}

// Close releases the log file and the Telegram log sink.
func (a *App) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}

// applyConfig is the watcher callback. Only logging is re-applied; other
// sections are read once at startup.
func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config change summary", fields...)
	if config.RequiresRestart(sections) {
		a.log.Warn("config changed outside logging; restart required for it to take effect")
	}
	a.logs.Apply(mapLogConfig(newCfg, a.chatID))
}
