package poller

import (
	"context"
	"time"

	"hwbot/internal/homework"
)

// Fetcher returns the raw decoded status response for the window starting
// at from. Failures should be *homework.Error.
type Fetcher interface {
	Fetch(ctx context.Context, from homework.Cursor) (any, error)
}

// Notifier delivers one message to the recipient. It must not retry.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

type Config struct {
	// RetryInterval is the fixed pause after every cycle.
	RetryInterval time.Duration
	// Cursor is the initial from_date.
	Cursor homework.Cursor
	// FollowCursor adopts current_date from responses. The cursor still
	// never moves backward.
	FollowCursor bool
}

// State is the poller's position within a cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateDecoding
	StateDeciding
	StateNotifying
	StateErrorHandling
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateDecoding:
		return "decoding"
	case StateDeciding:
		return "deciding"
	case StateNotifying:
		return "notifying"
	case StateErrorHandling:
		return "error_handling"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Outcome is what a single cycle ended with.
type Outcome int

const (
	// OutcomeAborted: the context was cancelled mid-cycle.
	OutcomeAborted Outcome = iota
	OutcomeNoAssignment
	OutcomeUnchanged
	OutcomeNotified
	// OutcomeDeliveryFailed: a change was detected but not delivered, so
	// it was not committed.
	OutcomeDeliveryFailed
	// OutcomeErrorReported: a new error message was handed to the notifier.
	OutcomeErrorReported
	// OutcomeErrorSuppressed: the error message had already been handled.
	OutcomeErrorSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAborted:
		return "aborted"
	case OutcomeNoAssignment:
		return "no_assignment"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNotified:
		return "notified"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeErrorReported:
		return "error_reported"
	case OutcomeErrorSuppressed:
		return "error_suppressed"
	default:
		return "unknown"
	}
}

// Stats are cumulative counters since the poller was created.
type Stats struct {
	Cycles           uint64
	Notified         uint64
	DeliveryFailures uint64
	Errors           uint64
	ErrorsSuppressed uint64
}
