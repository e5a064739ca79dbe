package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/burrowhq/burrow/internal/cli"
)

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	workspaceSlug := fs.String("workspace", defaultWorkspaceSlug, "Workspace slug")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "stats does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, pool, _, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	workspace, err := resolveWorkspace(ctx, pool, *workspaceSlug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	stats, err := pool.QueryWorkspaceStats(ctx, workspace.WorkspaceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query stats: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := [][]string{
		{"items", fmt.Sprintf("%d", stats.Items)},
		{"topics", fmt.Sprintf("%d", stats.Topics)},
		{"auto topics", fmt.Sprintf("%d", stats.AutoTopics)},
		{"links", fmt.Sprintf("%d", stats.Links)},
		{"chunks", fmt.Sprintf("%d", stats.Chunks)},
		{"embedded chunks", fmt.Sprintf("%d", stats.EmbeddedChunks)},
		{"last activity", formatUTCTimestampPtr(stats.LastActivityAt)},
	}
	for _, count := range stats.ItemsByType {
		rows = append(rows, []string{"items:" + count.Type, fmt.Sprintf("%d", count.Count)})
	}

	if err := writeTable([]string{"metric", "value"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
