package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/burrowhq/burrow/internal/auth"
	"github.com/burrowhq/burrow/internal/cli"
)

func runWorkspace(args []string) int {
	if len(args) == 0 {
		printWorkspaceUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "-h", "--help":
		printWorkspaceUsage()
		return 0
	case "create-key":
		return runWorkspaceCreateKey(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown workspace action: %s\n\n", args[0])
		printWorkspaceUsage()
		return 2
	}
}

func runWorkspaceCreateKey(args []string) int {
	fs := flag.NewFlagSet("workspace create-key", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	workspaceSlug := fs.String("workspace", defaultWorkspaceSlug, "Workspace slug (created if missing)")
	label := fs.String("label", "default", "Key label")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "workspace create-key does not accept positional arguments")
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

	plaintext, prefix, hash, err := auth.GenerateAPIKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		return 1
	}

	key, err := pool.CreateWorkspaceKey(ctx, workspace.WorkspaceID, *label, prefix, hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to store key: %v\n", err)
		return 1
	}

	fmt.Printf("workspace: %s (%s)\n", workspace.Slug, workspace.WorkspaceUUID)
	fmt.Printf("key label: %s\n", key.Label)
	fmt.Printf("api key:   %s\n", plaintext)
	fmt.Println("")
	fmt.Println("Store this key now. It is hashed at rest and cannot be shown again.")
	return 0
}

func printWorkspaceUsage() {
	fmt.Fprintln(os.Stderr, "burrow workspace")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  burrow workspace <action> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Actions:")
	fmt.Fprintln(os.Stderr, "  create-key   Create a workspace (if missing) and print a new API key")
}
