package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/burrowhq/burrow/internal/cli"
	"github.com/burrowhq/burrow/internal/logging"
	"github.com/burrowhq/burrow/internal/organize"
)

func runSweep(args []string) int {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "sweep does not accept positional arguments")
		return 2
	}

	ctx, cancel, pool, cfg, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	sweeper := organize.NewSweeper(pool, logger)
	result, err := sweeper.RunSweep(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
		return 1
	}

	fmt.Printf("workspaces: %d\n", result.Workspaces)
	fmt.Printf("merged:     %d\n", result.Merged)
	fmt.Printf("failed:     %d\n", result.Failed)
	if result.Failed > 0 {
		return 1
	}
	return 0
}
