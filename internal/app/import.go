package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/burrowhq/burrow/internal/cli"
	"github.com/burrowhq/burrow/internal/importer"
	"github.com/burrowhq/burrow/internal/jobs"
	"github.com/burrowhq/burrow/internal/logging"
	"github.com/burrowhq/burrow/internal/organize"
	"github.com/burrowhq/burrow/internal/search"
)

const maxImportFileBytes = 8 << 20

// syncRunner handles events inline so CLI imports finish their
// classification and indexing before the process exits.
type syncRunner struct {
	ctx        context.Context
	classifier *organize.Service
	indexer    *search.Indexer
	logger     zerolog.Logger
}

func (r *syncRunner) Enqueue(event jobs.Event) bool {
	switch event.Name {
	case jobs.EventClassifyRequested:
		if _, err := r.classifier.ClassifyAndLink(r.ctx, event.WorkspaceID, event.ItemID, event.Content); err != nil {
			r.logger.Error().Err(err).Int64("item_id", event.ItemID).Msg("classification failed")
			return false
		}
	case jobs.EventIndexRequested:
		if _, err := r.indexer.IndexItem(r.ctx, event.WorkspaceID, event.ItemID, event.Content); err != nil {
			r.logger.Error().Err(err).Int64("item_id", event.ItemID).Msg("indexing failed")
			return false
		}
	default:
		r.logger.Error().Str("event", event.Name).Msg("no inline handler for event")
		return false
	}
	return true
}

func runImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	workspaceSlug := fs.String("workspace", defaultWorkspaceSlug, "Workspace slug")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "import requires at least one file path")
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

	workspace, err := resolveWorkspace(ctx, pool, *workspaceSlug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	embedder := newEmbedder(cfg)
	runner := &syncRunner{
		ctx:        ctx,
		classifier: organize.NewService(pool, embedder, logger),
		indexer:    search.NewIndexer(pool, embedder, logger),
		logger:     logger,
	}
	service := importer.NewService(pool, runner, logger)

	exitCode := 0
	for _, path := range fs.Args() {
		data, err := readImportFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", path, err)
			exitCode = 1
			continue
		}

		result, err := service.ImportFile(ctx, workspace.WorkspaceID, filepath.Base(path), data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import of %s failed: %v\n", path, err)
			exitCode = 1
			continue
		}

		for _, item := range result.Items {
			fmt.Printf("%s: imported %q as %s (%d chunks)\n", path, item.Title, item.ItemUUID, item.ChunkCount)
		}
	}
	return exitCode
}

func readImportFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("is a directory")
	}
	if info.Size() > maxImportFileBytes {
		return nil, fmt.Errorf("file exceeds the %d byte import limit", maxImportFileBytes)
	}
	return os.ReadFile(path)
}
