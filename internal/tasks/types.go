package tasks

import (
	"context"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/logging"
)

// TaskFunc is the unit of work.
// It receives a TaskLogger which stores the logging output (at runtime).
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

// TaskDefinition describes a maintenance task to register. A zero Timeout
// falls back to DefaultRunTimeout.
type TaskDefinition struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Handler  TaskFunc
}

type TaskStatus struct {
	Name       string    `json:"name,omitempty"`
	Running    bool      `json:"running,omitempty"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}
