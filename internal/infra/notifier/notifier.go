// Package notifier delivers the formatted brief to messaging endpoints.
// Each channel handles its own rate limiting and message-length limits.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/observability/metrics"
)

// Channel is one delivery endpoint for the formatted brief.
// Implementations must be safe for concurrent use and respect context
// cancellation.
type Channel interface {
	// Name returns the channel identifier used in logs and metrics.
	Name() string

	// IsEnabled reports whether the channel is configured for delivery.
	// Disabled channels are skipped by the dispatcher.
	IsEnabled() bool

	// Send delivers one message. Implementations apply their own rate
	// limiting and length handling.
	Send(ctx context.Context, text string) error
}

// Dispatcher fans the brief out to every enabled channel.
type Dispatcher struct {
	channels []Channel
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given channels.
func NewDispatcher(channels []Channel, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{channels: channels, logger: logger}
}

// Deliver sends the brief to all enabled channels sequentially. Any
// channel failure makes the whole delivery fail with ErrDelivery, but
// remaining channels are still attempted so one bad webhook does not
// silence the others.
func (d *Dispatcher) Deliver(ctx context.Context, text string) error {
	enabled := 0
	var firstErr error

	for _, ch := range d.channels {
		if !ch.IsEnabled() {
			continue
		}
		enabled++

		err := ch.Send(ctx, text)
		metrics.RecordDelivery(ch.Name(), err == nil)
		if err != nil {
			d.logger.Error("brief delivery failed",
				slog.String("channel", ch.Name()),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: channel %s: %v", entity.ErrDelivery, ch.Name(), err)
			}
			continue
		}
		d.logger.Info("brief delivered", slog.String("channel", ch.Name()))
	}

	if enabled == 0 {
		d.logger.Warn("no delivery channels enabled, brief not sent")
	}
	return firstErr
}
