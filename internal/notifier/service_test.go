package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"hwbot/internal/homework"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type fakeSender struct {
	err   error
	calls []string
	to    []kit.ChatTarget
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.calls = append(f.calls, text)
	f.to = append(f.to, to)
	if f.err != nil {
		return kit.MessageRef{}, f.err
	}
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.calls)}, nil
}

func TestSendDeliversToTarget(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	s := New(Config{Target: kit.ChatTarget{ChatID: 7, ThreadID: 3}, RatePerSec: 100}, fs, logx.Nop())

	if err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(fs.calls) != 1 || fs.calls[0] != "hi" || fs.to[0] != (kit.ChatTarget{ChatID: 7, ThreadID: 3}) {
		t.Fatalf("unexpected calls %v to %v", fs.calls, fs.to)
	}
	if h := s.Snapshot(); len(h) != 1 || h[0].Error != "" {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestSendFailureIsDeliveryError(t *testing.T) {
	t.Parallel()
	cause := errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	fs := &fakeSender{err: cause}
	s := New(Config{Target: kit.ChatTarget{ChatID: 7}, RatePerSec: 100}, fs, logx.Nop())

	err := s.Send(context.Background(), "hi")
	if homework.KindOf(err) != homework.KindDelivery {
		t.Fatalf("kind = %v, want DeliveryError", homework.KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	if len(fs.calls) != 1 {
		t.Fatalf("no retry expected, got %d calls", len(fs.calls))
	}
	if h := s.Snapshot(); len(h) != 1 || h[0].Error == "" {
		t.Fatalf("failed attempt not recorded: %+v", h)
	}
}

func TestSendWithoutTarget(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	s := New(Config{}, fs, logx.Nop())
	if err := s.Send(context.Background(), "hi"); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("err = %v, want ErrNoTarget", err)
	}
	if err := s.Send(context.Background(), "  "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err = %v, want ErrEmptyText", err)
	}
	if len(fs.calls) != 0 {
		t.Fatalf("sender must not be called, got %d calls", len(fs.calls))
	}
}

func TestSendHonorsCancelledContext(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	s := New(Config{Target: kit.ChatTarget{ChatID: 7}, RatePerSec: 1}, fs, logx.Nop())
	// drain the single burst token
	if err := s.Send(context.Background(), "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Send(ctx, "second"); homework.KindOf(err) != homework.KindDelivery {
		t.Fatalf("expected delivery error on limiter timeout, got %v", err)
	}
	if len(fs.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(fs.calls))
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	s := New(Config{Target: kit.ChatTarget{ChatID: 7}, RatePerSec: 1000, HistorySize: 2}, &fakeSender{}, logx.Nop())
	for _, m := range []string{"a", "b", "c"} {
		if err := s.Send(context.Background(), m); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	h := s.Snapshot()
	if len(h) != 2 || h[0].Text != "b" || h[1].Text != "c" {
		t.Fatalf("history = %+v", h)
	}
}
