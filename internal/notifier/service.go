package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hwbot/internal/homework"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

var (
	ErrNoTarget  = errors.New("notifier: recipient chat is not set")
	ErrEmptyText = errors.New("notifier: empty message")
)

// Service sends to one recipient. It is safe for concurrent use, although
// the poller only ever calls it from one goroutine.
type Service struct {
	log    logx.Logger
	sender kit.Sender

	cfg     Config
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	return &Service{
		log:     log,
		sender:  sender,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Send delivers text once. Any failure comes back as a *homework.Error of
// kind KindDelivery.
func (s *Service) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return homework.Delivery(ErrEmptyText)
	}
	if s.cfg.Target.ChatID == 0 || s.sender == nil {
		return homework.Delivery(ErrNoTarget)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return homework.Delivery(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()
	start := time.Now()
	_, err := s.sender.SendText(callCtx, s.cfg.Target, text, &kit.SendOptions{DisablePreview: true})
	s.appendHistory(text, err)
	if err != nil {
		s.log.Debug("send failed", logx.Err(err), logx.Duration("took", time.Since(start)))
		return homework.Delivery(err)
	}
	s.log.Debug("sent", logx.Int64("chat_id", s.cfg.Target.ChatID), logx.Duration("took", time.Since(start)))
	return nil
}

// Snapshot returns the recent delivery attempts, oldest first.
func (s *Service) Snapshot() []HistoryItem {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}

func (s *Service) appendHistory(text string, err error) {
	it := HistoryItem{At: time.Now(), Text: text}
	if err != nil {
		it.Error = err.Error()
	}
	s.hmu.Lock()
	s.history = append(s.history, it)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.hmu.Unlock()
}
