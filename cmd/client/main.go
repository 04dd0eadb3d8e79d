// Package main is the entry point for the todo command line client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dibarradev/to-do/internal/client/cli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	version := fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
	if err := cli.NewRootCmd(version, cli.Open).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
