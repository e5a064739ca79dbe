package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/burrowhq/burrow/internal/cli"
	"github.com/burrowhq/burrow/internal/logging"
	"github.com/burrowhq/burrow/internal/search"
)

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	workspaceSlug := fs.String("workspace", defaultWorkspaceSlug, "Workspace slug")
	query := fs.String("query", "", "Query text")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "search does not accept positional arguments")
		return 2
	}

	trimmedQuery := strings.TrimSpace(*query)
	if trimmedQuery == "" {
		fmt.Fprintln(os.Stderr, "--query is required")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
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

	searcher := search.NewService(pool, newEmbedder(cfg), logger)
	results, err := searcher.Search(ctx, workspace.WorkspaceID, trimmedQuery)
	if err != nil {
		if errors.Is(err, search.ErrQueryTooShort) {
			fmt.Fprintln(os.Stderr, "--query must be at least 2 characters")
			return 2
		}
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.ItemUUID,
			result.Type,
			truncateForTable(result.Title, 48),
			result.Strategy,
			fmt.Sprintf("%.4f", result.Score),
			truncateForTable(result.Snippet, 64),
		})
	}
	if err := writeTable([]string{"item", "type", "title", "strategy", "score", "snippet"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
