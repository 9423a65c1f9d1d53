// Package notifier announces finished refresh runs to external channels.
package notifier

import (
	"context"
	"time"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// RunSummary describes one finished pipeline run
type RunSummary struct {
	RunID    string         `json:"runId"`
	AsOf     time.Time      `json:"asOf"`
	Status   string         `json:"status"`
	Symbols  int            `json:"symbols"`
	Failed   []string       `json:"failed,omitempty"`
	Lights   map[string]int `json:"lights,omitempty"`
	Duration time.Duration  `json:"-"`
	Error    string         `json:"error,omitempty"`
}

// Notifier delivers run summaries
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Notify delivers a summary
	Notify(ctx context.Context, summary RunSummary) error
}
