package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler returns a context that is cancelled when SIGINT or
// SIGTERM is received. Detection stops at the next block boundary and the
// partial result is still reported.
func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived signal: %v\n", sig)
			fmt.Fprintf(os.Stderr, "Stopping after the current block...\n")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
