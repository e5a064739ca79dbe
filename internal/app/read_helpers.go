package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/burrowhq/burrow/internal/cli"
	"github.com/burrowhq/burrow/internal/config"
	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/embedding"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"

	defaultWorkspaceSlug = "default"
	defaultWorkspaceName = "Personal"
	defaultOwnerUserID   = "local"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func formatUTCTimestampPtr(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// connectPool loads env + config, opens the database, and returns the config
// for callers that also build an embedding client.
func connectPool(timeout time.Duration, envLoader *cli.EnvLoader) (context.Context, context.CancelFunc, *db.Pool, *config.Config, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return ctx, cancel, pool, cfg, nil
}

func newEmbedder(cfg *config.Config) *embedding.Client {
	return embedding.NewClient(embedding.Options{
		Endpoint:       cfg.EmbeddingEndpoint,
		APIKey:         cfg.EmbeddingAPIKey,
		Model:          cfg.EmbeddingModel,
		Dimensions:     cfg.EmbeddingDimensions,
		RequestTimeout: cfg.EmbeddingTimeout,
	})
}

func resolveWorkspace(ctx context.Context, pool *db.Pool, slug string) (*db.WorkspaceRecord, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		trimmed = defaultWorkspaceSlug
	}
	name := trimmed
	if trimmed == defaultWorkspaceSlug {
		name = defaultWorkspaceName
	}
	workspace, err := pool.GetOrCreateWorkspace(ctx, defaultOwnerUserID, name, trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %q: %w", trimmed, err)
	}
	return workspace, nil
}

func resolveItem(ctx context.Context, pool *db.Pool, workspaceID int64, itemUUID string) (*db.ItemRecord, error) {
	trimmed := strings.TrimSpace(itemUUID)
	if trimmed == "" {
		return nil, fmt.Errorf("--item is required")
	}
	item, err := pool.GetItemByUUID(ctx, workspaceID, trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve item %q: %w", trimmed, err)
	}
	return item, nil
}
