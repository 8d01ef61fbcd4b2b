// Package notify delivers fleet alerts (server down, server
// recovered) to external channels.
package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier delivers a single alert. Implementations are called from
// the alert scheduler's goroutine and must respect ctx.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Fanout pushes each alert to every configured channel. Channels are
// independent: one failing does not stop the others, and all failures
// come back combined so none is silently lost.
type Fanout []Notifier

func (f Fanout) Send(ctx context.Context, title, text string) error {
	var errs error
	for _, n := range f {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.Send(ctx, title, text))
	}
	return errs
}
