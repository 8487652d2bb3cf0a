package index

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Lifecycle event statuses published by index maintainers.
const (
	StatusReady    = "ready"
	StatusUpdating = "updating"
	StatusRemoved  = "removed"
)

// Event is an index lifecycle notification. Maintainers publish one
// when an index becomes usable, enters a rebuild, or is dropped.
type Event struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// Watcher applies index lifecycle events from NATS to a tracker so
// that planning sees rebuilding or dropped indexes as unavailable.
type Watcher struct {
	sub    *nats.Subscription
	logger *slog.Logger
}

// Watch subscribes to lifecycle events on the subject and applies them
// to the tracker until stopped.
func Watch(nc *nats.Conn, subject string, t *Tracker, logger *slog.Logger) (*Watcher, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var evt Event
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			logger.Warn("Dropping malformed index lifecycle event",
				"subject", msg.Subject, "error", err)
			return
		}
		applyEvent(t, evt, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	return &Watcher{sub: sub, logger: logger}, nil
}

func applyEvent(t *Tracker, evt Event, logger *slog.Logger) {
	switch evt.Status {
	case StatusReady:
		t.MarkReady(evt.Path)
	case StatusUpdating:
		t.MarkUpdating(evt.Path)
	case StatusRemoved:
		t.Remove(evt.Path)
	default:
		logger.Warn("Unknown index lifecycle status",
			"path", evt.Path, "status", evt.Status)
		return
	}
	logger.Info("Applied index lifecycle event",
		"path", evt.Path, "status", evt.Status)
}

// Stop unsubscribes the watcher.
func (w *Watcher) Stop() error {
	return w.sub.Unsubscribe()
}
