package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/wflint-dev/wflint/cmd"
)

// main is a thin entry point kept at the module root so `go run .` works;
// the installed binary lives under cmd/wflint.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.Execute(ctx)
}
