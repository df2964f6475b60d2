package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/enricoisidori/threadscape/cmd"
	"github.com/enricoisidori/threadscape/internal/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	err := cmd.Execute(ctx)

	// Flush buffered log entries before the process ends; os.Exit skips
	// deferred calls.
	observability.Sync()

	if err != nil {
		os.Exit(1)
	}
}
