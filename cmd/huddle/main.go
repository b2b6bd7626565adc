// Huddle: shared conversation and memory core for multi-agent teams.
//
// Usage:
//
//	huddle serve                                   # Start MCP server (stdio transport)
//	huddle inspect --archive f.db --project p      # Print project memory from a snapshot
//	huddle version
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the root command. Flags override the HUDDLE_* environment.
type CLI struct {
	Env      string `help:"Environment (development, test, production); overrides HUDDLE_ENV"`
	LogLevel string `help:"Log level (debug, info, warn, error); overrides HUDDLE_LOG_LEVEL"`
	Roster   string `type:"path" help:"Agent roster YAML; overrides HUDDLE_ROSTER"`

	Serve   ServeCmd   `cmd:"" help:"Start the MCP server (stdio transport)"`
	Inspect InspectCmd `cmd:"" help:"Print project memory and agent digests from an archive"`
	Version VersionCmd `cmd:"" help:"Print the version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("huddle"),
		kong.Description("Shared conversation and memory core for multi-agent teams"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
