// Command mp32cdda converts audio files to CD-DA WAV (44.1 kHz, 16 bit,
// stereo). It parses flags, validates config, runs the batch, and cancels it
// on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/mp32cdda/internal/config"
	"github.com/ik5/mp32cdda/internal/logging"
	"github.com/ik5/mp32cdda/internal/pipeline"
)

// Exit codes.
const (
	exitOK        = 0
	exitUsage     = 1
	exitFailed    = 2
	exitCancelled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 1. Load config from defaults and CLI flags.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, config.ErrVersion) {
			return exitOK
		}
		fmt.Fprintf(stderr, "mp32cdda: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "mp32cdda: %v\n", err)
		return exitUsage
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(stderr, "mp32cdda: %v\n", err)
		return exitUsage
	}
	defer log.Close()

	// 2. The external backend needs its binary; fail fast.
	if cfg.Backend == config.BackendFFmpeg {
		if err := pipeline.FFmpegAvailable(cfg.FFmpegPath); err != nil {
			fmt.Fprintf(stderr, "mp32cdda: %v\n", err)
			return exitUsage
		}
	}

	// 3. Run the batch, printing each file as it completes.
	batch := pipeline.Start(ctx, &cfg, log.Logger, cfg.Inputs, pipeline.Options{})
	for o := range batch.Outcomes() {
		printOutcome(stdout, o)
	}
	sum := batch.Wait()
	printSummary(stdout, sum)

	switch c := sum.Counts(); {
	case ctx.Err() != nil || sum.WasCancelled():
		return exitCancelled
	case c.Failed > 0:
		return exitFailed
	default:
		return exitOK
	}
}

func printOutcome(w io.Writer, o pipeline.Outcome) {
	switch {
	case o.Result == pipeline.Failed:
		fmt.Fprintf(w, "FAILED    %s: %s\n", o.Input, o.Reason())
	case o.Output == "":
		fmt.Fprintf(w, "%-9s %s\n", o.Result, o.Input)
	default:
		fmt.Fprintf(w, "%-9s %s -> %s\n", o.Result, o.Input, o.Output)
	}
}

func printSummary(w io.Writer, sum pipeline.Summary) {
	c := sum.Counts()
	fmt.Fprintf(w, "\n%d converted, %d cancelled, %d failed, %d not started, %d skipped\n",
		c.Succeeded, c.Cancelled, c.Failed, c.NotStarted, c.Warnings)

	for _, p := range sum.Failed() {
		fmt.Fprintf(w, "  failed:    %s\n", p)
	}
	for _, p := range sum.Cancelled() {
		fmt.Fprintf(w, "  cancelled: %s\n", p)
	}
	for _, wn := range sum.Warnings {
		fmt.Fprintf(w, "  skipped:   %s\n", wn)
	}
}
