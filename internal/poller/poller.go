package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"hwbot/internal/homework"
	logx "hwbot/pkg/logx"
)

// errorPrefix starts every error message sent to the recipient.
const errorPrefix = "Bot failure: "

type Poller struct {
	cfg    Config
	fetch  Fetcher
	notify Notifier
	log    logx.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error

	state     atomic.Int32
	changedAt atomic.Int64 // unix nanos of the last state change
	now       func() time.Time

	// owned by the goroutine running Run/Cycle
	tracker homework.Tracker
	dedup   *homework.Deduplicator
	cursor  homework.Cursor

	smu   sync.Mutex
	stats Stats
}

func New(cfg Config, fetch Fetcher, notify Notifier, log logx.Logger) (*Poller, error) {
	if fetch == nil {
		return nil, errors.New("poller: fetcher is nil")
	}
	if notify == nil {
		return nil, errors.New("poller: notifier is nil")
	}
	if cfg.RetryInterval <= 0 {
		return nil, errors.New("poller: retry interval must be > 0")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Poller{
		cfg:    cfg,
		fetch:  fetch,
		notify: notify,
		log:    log,
		sleep:  sleepCtx,
		now:    time.Now,
		dedup:  homework.NewDeduplicator(),
		cursor: cfg.Cursor,
	}
	p.changedAt.Store(p.now().UnixNano())
	return p, nil
}

func (p *Poller) State() State { return State(p.state.Load()) }

func (p *Poller) setState(s State) {
	p.state.Store(int32(s))
	p.changedAt.Store(p.now().UnixNano())
}

// Stalled reports whether the poller has stayed in one working state for
// longer than limit. Sleeping between cycles never counts as stalled.
func (p *Poller) Stalled(limit time.Duration) bool {
	if p.State() == StateSleeping {
		return false
	}
	return p.now().Sub(time.Unix(0, p.changedAt.Load())) > limit
}

// Tracked returns the last delivered status.
func (p *Poller) Tracked() homework.Status { return p.tracker.Current() }

// Cursor returns the from_date used by the next fetch.
func (p *Poller) Cursor() homework.Cursor { return p.cursor }

func (p *Poller) Stats() Stats {
	p.smu.Lock()
	defer p.smu.Unlock()
	return p.stats
}

// Run executes cycles until ctx is done. It always returns nil; there is
// no terminal state other than shutdown.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poller started",
		logx.Duration("retry_interval", p.cfg.RetryInterval),
		logx.Int64("from_date", int64(p.cursor)),
		logx.Bool("follow_cursor", p.cfg.FollowCursor),
	)
	for {
		out := p.Cycle(ctx)
		if out == OutcomeAborted || ctx.Err() != nil {
			break
		}
		p.setState(StateSleeping)
		if err := p.sleep(ctx, p.cfg.RetryInterval); err != nil {
			break
		}
		p.setState(StateIdle)
	}
	p.setState(StateIdle)
	st := p.Stats()
	p.log.Info("poller stopped",
		logx.Uint64("cycles", st.Cycles),
		logx.Uint64("notified", st.Notified),
		logx.Uint64("errors", st.Errors),
	)
	return nil
}

// Cycle runs one fetch/decode/decide/notify pass. It does not sleep.
func (p *Poller) Cycle(ctx context.Context) Outcome {
	if ctx.Err() != nil {
		return OutcomeAborted
	}
	p.count(func(s *Stats) { s.Cycles++ })

	p.setState(StateFetching)
	raw, err := p.fetch.Fetch(ctx, p.cursor)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeAborted
		}
		return p.handleError(ctx, classify(err))
	}

	p.setState(StateDecoding)
	snap, err := homework.Decode(raw)
	if err != nil {
		return p.handleError(ctx, classify(err))
	}

	p.setState(StateDeciding)
	if !snap.Present {
		p.log.Debug("no homework in response", logx.Int64("from_date", int64(p.cursor)))
		p.advanceCursor(snap)
		return OutcomeNoAssignment
	}

	a := snap.Assignment
	if !p.tracker.HasChanged(a) {
		p.log.Debug("homework status unchanged", logx.String("homework", a.Name), logx.String("status", string(a.Status)))
		p.advanceCursor(snap)
		return OutcomeUnchanged
	}

	msg, err := homework.StatusMessage(a)
	if err != nil {
		return p.handleError(ctx, classify(err))
	}

	p.setState(StateNotifying)
	if err := p.notify.Send(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return OutcomeAborted
		}
		// Not committed: the change is detected again next cycle.
		p.count(func(s *Stats) { s.DeliveryFailures++ })
		p.log.Error("status change not delivered",
			logx.String("homework", a.Name),
			logx.String("status", string(a.Status)),
			logx.Err(err),
			logx.SkipTelegram(),
		)
		return OutcomeDeliveryFailed
	}

	p.tracker.Commit(p.tracker.Advance(a))
	p.advanceCursor(snap)
	p.count(func(s *Stats) { s.Notified++ })
	p.log.Info("homework status changed",
		logx.String("homework", a.Name),
		logx.String("status", string(a.Status)),
		logx.SkipTelegram(),
	)
	return OutcomeNotified
}

func (p *Poller) handleError(ctx context.Context, he *homework.Error) Outcome {
	p.setState(StateErrorHandling)
	p.count(func(s *Stats) { s.Errors++ })
	msg := errorPrefix + he.Message()

	if !p.dedup.ShouldNotify(msg) {
		p.count(func(s *Stats) { s.ErrorsSuppressed++ })
		p.log.Info("poll cycle failed (already reported)", logx.String("kind", he.Kind.String()), logx.Err(he), logx.SkipTelegram())
		return OutcomeErrorSuppressed
	}

	// The report itself goes to the recipient; keep the log line out of the chat sink.
	p.log.Error("poll cycle failed", logx.String("kind", he.Kind.String()), logx.Err(he), logx.SkipTelegram())
	if err := p.notify.Send(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return OutcomeAborted
		}
		p.log.Error("error report not delivered", logx.Err(err), logx.SkipTelegram())
	}
	// Handled once attempted, delivered or not.
	p.dedup.Record(msg)
	return OutcomeErrorReported
}

func (p *Poller) advanceCursor(snap homework.Snapshot) {
	if !p.cfg.FollowCursor || !snap.HasCursor {
		return
	}
	next := p.cursor.Advance(snap.Cursor)
	if next != p.cursor {
		p.log.Debug("cursor advanced", logx.Int64("from", int64(p.cursor)), logx.Int64("to", int64(next)))
	}
	p.cursor = next
}

func (p *Poller) count(fn func(s *Stats)) {
	p.smu.Lock()
	fn(&p.stats)
	p.smu.Unlock()
}

// classify maps any failure onto the taxonomy. Anything a Fetcher returns
// that is not a *homework.Error counts as a transport failure.
func classify(err error) *homework.Error {
	var he *homework.Error
	if errors.As(err, &he) {
		return he
	}
	return homework.Transport("status API request failed", err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
