package config

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "hwbot/pkg/logx"
)

// Watcher reloads the config file when it changes on disk and hands the
// validated result to OnChange. Environment overrides are re-applied on
// every reload so credentials kept in the environment survive.
type Watcher struct {
	path   string
	log    logx.Logger
	lookup func(string) (string, bool)

	// OnChange receives the previous and the new config. It runs on the
	// debounce timer goroutine.
	OnChange func(old, new *Config)

	Debounce time.Duration

	mu       sync.Mutex
	cfg      *Config
	lastHash uint64
}

// NewWatcher watches path. lookup must be the environment used for the
// initial Load (nil means os.LookupEnv).
func NewWatcher(path string, current *Config, lookup func(string) (string, bool), log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Watcher{
		path:     path,
		log:      log,
		lookup:   lookup,
		Debounce: 250 * time.Millisecond,
		cfg:      current,
		lastHash: hashConfig(current),
	}
}

// Current returns the last committed config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Reload parses the file once and publishes it if it is valid and differs
// from the last committed config. It reports whether OnChange was called.
func (w *Watcher) Reload() (bool, error) {
	cfg, err := ParseFile(w.path)
	if err != nil {
		return false, err
	}
	ApplyEnv(cfg, w.lookup)
	if err := Validate(cfg); err != nil {
		return false, err
	}

	h := hashConfig(cfg)
	w.mu.Lock()
	if h != 0 && h == w.lastHash {
		w.mu.Unlock()
		w.log.Debug("config unchanged; skipping publish", logx.String("path", w.path))
		return false, nil
	}
	old := w.cfg
	w.cfg = cfg
	w.lastHash = h
	w.mu.Unlock()

	if w.OnChange != nil {
		w.OnChange(old, cfg)
	}
	w.log.Debug("config published", logx.String("path", w.path), logx.String("hash", fmt.Sprintf("%x", h)))
	return true, nil
}

// Watch blocks until ctx is done. A broken fsnotify watcher is recreated
// with a jittered exponential backoff.
func (w *Watcher) Watch(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
	)
	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nextWait := func() time.Duration {
		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2)+1))
		backoff = min(backoff*2, restartBackoffMax)
		return wait
	}
	sleep := func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.Debounce, func() {
			if ctx.Err() != nil {
				return
			}
			if _, err := w.Reload(); err != nil {
				w.log.Warn("config reload rejected", logx.String("path", w.path), logx.Err(err))
			}
		})
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err != nil {
			w.log.Warn("config watch init failed", logx.Err(err), logx.String("dir", dir))
			if !sleep(nextWait()) {
				return nil
			}
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			w.log.Warn("config watch add failed", logx.Err(err), logx.String("dir", dir))
			if !sleep(nextWait()) {
				return nil
			}
			continue
		}

		backoff = restartBackoffBase
		w.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				// Editors often replace the file, so match by basename.
				if strings.EqualFold(filepath.Base(ev.Name), file) &&
					ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					debounce()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				if err == nil {
					continue
				}
				if err == fsnotify.ErrEventOverflow {
					w.log.Warn("config watch overflow; forcing reload", logx.String("dir", dir))
					debounce()
					continue
				}
				w.log.Warn("config watch error", logx.Err(err), logx.String("dir", dir))
			}
		}

		_ = fw.Close()
		wait := nextWait()
		w.log.Warn("config watcher stopped; restarting", logx.String("dir", dir), logx.Duration("backoff", wait))
		if !sleep(wait) {
			return nil
		}
	}
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
