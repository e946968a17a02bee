// Command brief runs the ingestion pipeline once and exits. Useful for
// manual runs, cron outside the worker, and local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsbrief/internal/app"
	"newsbrief/internal/observability/logging"
)

func main() {
	// os.Exit in the middle of main would skip the deferred cleanup, so
	// main stays a thin wrapper around run.
	os.Exit(run())
}

func run() int {
	timeout := flag.Duration("timeout", 10*time.Minute, "pipeline run timeout")
	printBrief := flag.Bool("print", false, "print the formatted brief to stdout")
	flag.Parse()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.Build(ctx, logger)
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		return 1
	}
	defer application.Close()

	runCtx, runCancel := context.WithTimeout(ctx, *timeout)
	defer runCancel()

	state, err := application.Controller.Run(runCtx)
	if err != nil {
		logger.Error("pipeline run failed",
			slog.String("run_id", state.RunID),
			slog.Any("error", err))
		return 1
	}

	if *printBrief {
		fmt.Print(state.Formatted)
	}
	logger.Info("brief complete",
		slog.String("run_id", state.RunID),
		slog.Int("fetched", len(state.Raw)),
		slog.Int("admitted", len(state.Admitted)))
	return 0
}
