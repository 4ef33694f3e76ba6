package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/github/gh-watch-run/pkg/cli"
	"github.com/github/gh-watch-run/pkg/console"
)

// Build-time variable set by GoReleaser
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewWatchCommand()
	rootCmd.Version = version

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var usageErr *cli.UsageError
	var runFailed *cli.RunFailedError
	switch {
	case errors.As(err, &runFailed):
		// The summary line has already been printed; the failed run is
		// the expected business outcome, not a tool error.
		return 1
	case errors.As(err, &usageErr):
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		_ = rootCmd.Usage()
		return 2
	default:
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		return 3
	}
}
