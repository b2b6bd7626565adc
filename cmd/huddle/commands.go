package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"

	"github.com/HendryAvila/huddle/internal/archive"
	"github.com/HendryAvila/huddle/internal/config"
	huddleserver "github.com/HendryAvila/huddle/internal/server"
)

// loadConfig reads the environment and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(
		config.WithEnv(c.Env),
		config.WithLogLevel(c.LogLevel),
		config.WithRosterPath(c.Roster),
	)
}

// ─── serve ───────────────────────────────────────────────────────────────────

// ServeCmd starts the MCP server on stdio.
type ServeCmd struct{}

// Run executes the serve command.
func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog() //nolint:errcheck

	core, err := huddleserver.NewCore(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return fmt.Errorf("creating core: %w", err)
	}
	mcpServer := huddleserver.New(core)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP on stdio", "version", huddleserver.Version)
	stdio := server.NewStdioServer(mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ─── inspect ─────────────────────────────────────────────────────────────────

// InspectCmd prints the memory of one project from an archive snapshot.
type InspectCmd struct {
	Archive string `type:"path" help:"Archive file (default: the data directory snapshot)"`
	Project string `required:"" help:"Project id"`
	Agent   string `help:"Also render the shared memory digest for this agent"`
}

// Run executes the inspect command.
func (i *InspectCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog() //nolint:errcheck

	core, err := huddleserver.NewCore(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return fmt.Errorf("creating core: %w", err)
	}

	path := i.Archive
	if path == "" {
		path = cfg.ArchivePath()
	}
	ctx := context.Background()
	data, err := archive.Load(ctx, path)
	if err != nil {
		return err
	}
	if _, err := core.Store.Import(data); err != nil {
		return err
	}
	return i.print(os.Stdout, core)
}

func (i *InspectCmd) print(w io.Writer, core *huddleserver.Core) error {
	entries := core.Aggregator.ProjectMemory(i.Project)
	fmt.Fprintf(w, "Project %s: %d memory entries\n", i.Project, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  [%2d] %-10s %s  (%s)\n", e.Importance, e.MemoryType, e.Content, e.ConversationID)
	}
	if i.Agent == "" {
		return nil
	}
	digest := core.Aggregator.SharedMemoryForAgent(i.Agent, i.Project)
	if digest == "" {
		fmt.Fprintf(w, "\nNo shared memory for agent %s.\n", i.Agent)
		return nil
	}
	fmt.Fprintf(w, "\n%s", digest)
	return nil
}

// ─── version ─────────────────────────────────────────────────────────────────

// VersionCmd prints the version.
type VersionCmd struct{}

// Run executes the version command.
func (v *VersionCmd) Run() error {
	fmt.Printf("huddle v%s\n", huddleserver.Version)
	return nil
}
