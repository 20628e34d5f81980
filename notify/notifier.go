// Package notify delivers outbound status messages. The engine only hands
// over read-only snapshots; nothing flows back in.
package notify

import "context"

// Notifier delivers a titled message to an external channel.
type Notifier interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) Send(context.Context, string, string) error { return nil }
func (Noop) Name() string                               { return "noop" }
