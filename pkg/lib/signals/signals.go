package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	signalCtx context.Context
	cancel    context.CancelFunc
	once      sync.Once
)

// Context returns a Context that is cancelled on the first SIGTERM or SIGINT,
// letting a running search stop at its next cancellation check and report
// what it has. A second signal terminates the process with exit code 1.
func Context() context.Context {
	once.Do(func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, shutdownSignals...)
		signalCtx, cancel = WithSignals(context.Background(), c)
	})

	return signalCtx
}

// WithSignals derives a context cancelled by the first value received on c.
// A second value exits the process.
func WithSignals(parent context.Context, c <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
			return
		}

		<-c
		os.Exit(1) // second signal. Exit directly.
	}()
	return ctx, cancel
}
