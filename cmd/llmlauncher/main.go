package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"llmlauncher/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "development"

func main() {
	// Ctrl+C / SIGTERM cancel in-flight rounds and stop the server gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version); err != nil {
		fmt.Fprintln(os.Stderr, "llmlauncher:", err)
		stop()
		os.Exit(1)
	}
}
