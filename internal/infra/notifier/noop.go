package notifier

import (
	"context"
	"log/slog"
)

// NoOp is a delivery channel that logs the brief instead of sending it.
// Useful for local development and dry runs.
type NoOp struct{}

// NewNoOp creates a new NoOp channel.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Name returns the channel identifier.
func (n *NoOp) Name() string { return "noop" }

// IsEnabled always reports true.
func (n *NoOp) IsEnabled() bool { return true }

// Send logs the brief length and discards the content.
func (n *NoOp) Send(_ context.Context, text string) error {
	slog.Info("noop delivery, brief discarded", slog.Int("length", len(text)))
	return nil
}
