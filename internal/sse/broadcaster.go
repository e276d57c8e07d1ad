package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/eventledger/internal/model"
)

// EventUpdated is the SSE event name for every ledger change
const EventUpdated = "event-updated"

// Broadcaster turns ledger changes into SSE messages for the matching hub
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends change to clients watching its date. Dates with no
// watchers are skipped.
func (b *Broadcaster) Publish(change model.Change) {
	hub := b.hubManager.GetHub(change.Date)
	if hub == nil {
		return
	}

	data, err := json.Marshal(change)
	if err != nil {
		b.logger.Error("sse failed to encode change",
			slog.String("date", string(change.Date)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(EventUpdated, string(data))
}
