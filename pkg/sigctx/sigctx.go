// Package sigctx derives a context canceled on shutdown signals.
package sigctx

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext returns a context canceled on SIGINT, SIGTERM or
// SIGQUIT. The cancel func releases the signal registration.
func NotifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
}
