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

func runClassify(args []string) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	workspaceSlug := fs.String("workspace", defaultWorkspaceSlug, "Workspace slug")
	itemUUID := fs.String("item", "", "Item UUID to classify")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "classify does not accept positional arguments")
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

	item, err := resolveItem(ctx, pool, workspace.WorkspaceID, *itemUUID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	classifier := organize.NewService(pool, newEmbedder(cfg), logger)
	assignment, err := classifier.ClassifyAndLink(ctx, workspace.WorkspaceID, item.ItemID, item.Title+"\n"+item.Content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(assignment); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	action := "linked to existing topic"
	if assignment.CreatedTopic {
		action = "created new topic"
	}
	fmt.Printf("item:       %s\n", item.ItemUUID)
	fmt.Printf("topic:      %s (%s)\n", assignment.TopicName, assignment.TopicUUID)
	fmt.Printf("confidence: %.4f\n", assignment.Confidence)
	fmt.Printf("action:     %s\n", action)
	return 0
}
