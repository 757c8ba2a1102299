package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownTimeout bounds how long servers get to drain on shutdown.
const ShutdownTimeout = 10 * time.Second

// WaitForSignal blocks until SIGINT/SIGTERM arrives or ctx is cancelled,
// then returns a context bounded by ShutdownTimeout for draining.
func WaitForSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	return context.WithTimeout(context.Background(), ShutdownTimeout)
}
