package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "workspace":
		return runWorkspace(args[1:])
	case "classify":
		return runClassify(args[1:])
	case "index":
		return runIndex(args[1:])
	case "search":
		return runSearch(args[1:])
	case "sweep":
		return runSweep(args[1:])
	case "import":
		return runImport(args[1:])
	case "stats":
		return runStats(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "burrow CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  burrow <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health     Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  workspace  Manage workspaces and API keys")
	fmt.Fprintln(os.Stderr, "  classify   Assign one item to a topic")
	fmt.Fprintln(os.Stderr, "  index      Rebuild search chunks for one item")
	fmt.Fprintln(os.Stderr, "  search     Run hybrid search against a workspace")
	fmt.Fprintln(os.Stderr, "  sweep      Merge duplicate auto-created topics")
	fmt.Fprintln(os.Stderr, "  import     Import md/txt/html/json files as items")
	fmt.Fprintln(os.Stderr, "  stats      Show workspace counts")
	fmt.Fprintln(os.Stderr, "  serve      Start the API server and job workers")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"burrow <command> -h\" for command-specific flags.")
}
