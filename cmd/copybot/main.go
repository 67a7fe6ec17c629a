// Package main provides the copybot CLI entrypoint.
//
// Usage:
//
//	copybot record [options]     record market events into the object store
//	copybot replay [options]     replay a recorded event stream
//	copybot inspect [options]    show a run's stored manifest
//	copybot runs [options]       list stored runs
//	copybot version              show version information
//
// Exit codes:
//   - 0: success
//   - 1: run error
//   - 2: configuration error
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/copytrader-io/copybot/cli/cmd"
)

// commit is injected at build time via -ldflags "-X main.commit=<sha>".
var commit = "unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cmd.NewApp(commit)
	if err := app.RunContext(ctx, os.Args); err != nil {
		// ExitErrHandler already exited for handled errors
		os.Exit(1)
	}
}
