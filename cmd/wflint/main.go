package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/wflint-dev/wflint/cmd"
)

// main is the entry point of the application.
func main() {
	defer handlePanic()

	// Listen for interrupt signals (SIGINT, SIGTERM) so an in-flight
	// analysis can shut down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}

// handlePanic turns an unrecovered panic into a readable crash report
// instead of a bare stack dump.
func handlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "wflint crashed: %v\n\n%s\n", r, debug.Stack())
		os.Exit(1)
	}
}
