package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/burrowhq/burrow/internal/cli"
	"github.com/burrowhq/burrow/internal/config"
	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/httpapi"
	"github.com/burrowhq/burrow/internal/importer"
	"github.com/burrowhq/burrow/internal/jobs"
	"github.com/burrowhq/burrow/internal/logging"
	"github.com/burrowhq/burrow/internal/organize"
	"github.com/burrowhq/burrow/internal/search"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	pool, err := db.NewPool(dbCtx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	embedder := newEmbedder(cfg)
	classifier := organize.NewService(pool, embedder, logger)
	indexer := search.NewIndexer(pool, embedder, logger)
	searcher := search.NewService(pool, embedder, logger)
	sweeper := organize.NewSweeper(pool, logger)

	dispatcher := jobs.NewDispatcher(cfg.JobQueueSize, cfg.JobWorkers, logger)
	dispatcher.Register(jobs.EventClassifyRequested, func(jobCtx context.Context, event jobs.Event) error {
		_, err := classifier.ClassifyAndLink(jobCtx, event.WorkspaceID, event.ItemID, event.Content)
		return err
	})
	dispatcher.Register(jobs.EventIndexRequested, func(jobCtx context.Context, event jobs.Event) error {
		_, err := indexer.IndexItem(jobCtx, event.WorkspaceID, event.ItemID, event.Content)
		return err
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	go runSweepTicker(ctx, sweeper, cfg.SweepInterval, logger)

	importSvc := importer.NewService(pool, dispatcher, logger)
	srv := httpapi.NewServer(pool, searcher, importSvc, dispatcher, logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

// runSweepTicker merges duplicate auto topics on a fixed interval until the
// context is canceled.
func runSweepTicker(ctx context.Context, sweeper *organize.Sweeper, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("topic sweep scheduled")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := sweeper.RunSweep(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("topic sweep failed")
				continue
			}
			logger.Info().
				Int("workspaces", result.Workspaces).
				Int("merged", result.Merged).
				Int("failed", result.Failed).
				Msg("topic sweep finished")
		}
	}
}
