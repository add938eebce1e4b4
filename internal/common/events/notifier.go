package events

import (
	"context"
	"log/slog"
)

// Notifier publishes events on behalf of request handlers. Failures are
// logged and never returned: a lost notification must not change the
// outcome of the request that caused it.
type Notifier struct {
	publisher   Publisher
	logger      *slog.Logger
	correlation func(context.Context) string
}

// NewNotifier creates a Notifier. correlation extracts the request
// correlation id from ctx and may be nil.
func NewNotifier(publisher Publisher, logger *slog.Logger, correlation func(context.Context) string) *Notifier {
	if publisher == nil {
		publisher = Discard{}
	}
	return &Notifier{publisher: publisher, logger: logger, correlation: correlation}
}

// Notify builds and publishes one event. A nil Notifier does nothing.
func (n *Notifier) Notify(ctx context.Context, eventType, accountID, resourceType, resourceID string, data any) {
	if n == nil {
		return
	}

	event, err := NewEvent(eventType, accountID, resourceType, resourceID, data)
	if err != nil {
		n.logger.Error("failed to build event", "type", eventType, "error", err)
		return
	}
	if n.correlation != nil {
		event.WithCorrelation(n.correlation(ctx))
	}

	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("failed to publish event",
			"type", eventType,
			"resource_id", resourceID,
			"error", err,
		)
	}
}
