package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/burrowhq/burrow/internal/cli"
	"github.com/burrowhq/burrow/internal/logging"
	"github.com/burrowhq/burrow/internal/search"
)

func runIndex(args []string) int {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 120*time.Second, "Command timeout")
	workspaceSlug := fs.String("workspace", defaultWorkspaceSlug, "Workspace slug")
	itemUUID := fs.String("item", "", "Item UUID to index")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "index does not accept positional arguments")
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

	item, err := resolveItem(ctx, pool, workspace.WorkspaceID, *itemUUID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	indexer := search.NewIndexer(pool, newEmbedder(cfg), logger)
	result, err := indexer.IndexItem(ctx, workspace.WorkspaceID, item.ItemID, item.Content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		return 1
	}

	fmt.Printf("item:     %s\n", item.ItemUUID)
	fmt.Printf("chunks:   %d\n", result.ChunkCount)
	fmt.Printf("embedded: %d\n", result.Embedded)
	if result.Language != "" {
		fmt.Printf("language: %s\n", result.Language)
	}
	return 0
}
