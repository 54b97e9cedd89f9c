package app

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "hwbot/pkg/logx"
)

const (
	sdReady    = daemon.SdNotifyReady
	sdStopping = daemon.SdNotifyStopping
	sdWatchdog = daemon.SdNotifyWatchdog
)

// sdNotify is a no-op outside a systemd unit with Type=notify.
func sdNotify(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("systemd notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("systemd notified", logx.String("state", state))
	}
}

// watchdogInterval returns half of WatchdogSec, or 0 when the watchdog is off.
func watchdogInterval(log logx.Logger) time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Warn("systemd watchdog misconfigured", logx.Err(err))
		return 0
	}
	return d / 2
}

// runWatchdog pings systemd every tick while alive reports true. A stuck
// poll loop stops the pings, so systemd restarts the unit.
func runWatchdog(ctx context.Context, every time.Duration, log logx.Logger, alive func() bool, ping func()) {
	t := time.NewTicker(every)
	defer t.Stop()
	stalled := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !alive() {
				if !stalled {
					log.Error("poll loop stalled; withholding watchdog ping")
				}
				stalled = true
				continue
			}
			if stalled {
				log.Info("poll loop progressing again")
				stalled = false
			}
			ping()
		}
	}
}

// stallLimit is how long a single state may last before the loop counts as
// stuck: the longer of the two network timeouts plus slack for the rate
// limiter.
func stallLimit(requestTimeout, sendTimeout time.Duration) time.Duration {
	return max(requestTimeout, sendTimeout) + time.Minute
}
