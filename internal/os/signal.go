package os

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyOnShutdown returns a context that is cancelled when the process
// receives SIGINT or SIGTERM.
func NotifyOnShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
