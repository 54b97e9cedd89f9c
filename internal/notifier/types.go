package notifier

import (
	"time"

	kit "hwbot/internal/transport"
)

type Config struct {
	Target kit.ChatTarget
	// RatePerSec caps sends per second (burst = rate). Default 1.
	RatePerSec int
	// SendTimeout bounds one delivery attempt. Default 15s.
	SendTimeout time.Duration
	// HistorySize is the number of attempts kept for Snapshot. Default 50.
	HistorySize int
}

type HistoryItem struct {
	At    time.Time
	Text  string
	Error string `json:",omitempty"`
}
