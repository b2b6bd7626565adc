// Package server wires all components and creates the MCP server instance.
//
// This is the composition root: it creates the concrete store, roster,
// enforcer and aggregator and injects them into the tools, prompts and
// resources that depend on them. No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"

	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/chattools"
	"github.com/HendryAvila/huddle/internal/config"
	"github.com/HendryAvila/huddle/internal/invariant"
	"github.com/HendryAvila/huddle/internal/prompts"
	"github.com/HendryAvila/huddle/internal/resources"
	"github.com/HendryAvila/huddle/internal/roster"
	"github.com/HendryAvila/huddle/internal/sharedmem"
	"github.com/HendryAvila/huddle/internal/teamlead"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Core holds the process-wide components shared by every surface.
type Core struct {
	Store      *chat.Store
	Roster     *roster.Roster
	Enforcer   *invariant.Enforcer
	Aggregator *sharedmem.Aggregator
	Resolver   *teamlead.Resolver
	Config     config.Config
}

// NewCore builds the components from cfg. The roster is read from
// cfg.RosterPath on fsys when set; otherwise it starts empty.
func NewCore(cfg config.Config, fsys afero.Fs, logger *slog.Logger) (*Core, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r, err := roster.New()
	if err != nil {
		return nil, err
	}
	if cfg.RosterPath != "" {
		if r, err = roster.Load(fsys, cfg.RosterPath); err != nil {
			return nil, fmt.Errorf("loading roster: %w", err)
		}
	}

	store := chat.New(chat.DefaultConfig(), chat.WithLogger(logger))
	for _, p := range r.Projects() {
		if _, err := store.BootstrapProject(p); err != nil {
			return nil, fmt.Errorf("bootstrapping project %q: %w", p, err)
		}
	}

	mode := cfg.EnforcementMode()
	logger.Info("core initialized",
		"env", cfg.Env,
		"enforcement", mode.String(),
		"agents", r.Len(),
		"projects", len(r.Projects()),
	)

	return &Core{
		Store:    store,
		Roster:   r,
		Enforcer: invariant.NewEnforcer(mode, store, logger),
		Aggregator: sharedmem.New(store, r,
			sharedmem.WithLogger(logger),
			sharedmem.WithDiagnostics(cfg.Diagnostics),
		),
		Resolver: teamlead.NewResolver(teamlead.WithLogger(logger)),
		Config:   cfg,
	}, nil
}

// Tools returns every MCP tool bound to core.
func Tools(core *Core) []server.ServerTool {
	archivePath := core.Config.ArchivePath()

	convID := chattools.NewConvIDTool(core.Store)
	convCreate := chattools.NewConvCreateTool(core.Store, core.Enforcer)
	convArchive := chattools.NewConvArchiveTool(core.Store)
	convDelete := chattools.NewConvDeleteTool(core.Store)

	msgSend := chattools.NewMsgSendTool(core.Store, core.Enforcer)
	msgList := chattools.NewMsgListTool(core.Store)
	typing := chattools.NewTypingTool(core.Store)

	memAdd := chattools.NewMemAddTool(core.Store)
	memProject := chattools.NewMemProjectTool(core.Aggregator)
	memShared := chattools.NewMemSharedTool(core.Aggregator)

	teamLead := chattools.NewTeamLeadTool(core.Roster, core.Resolver)

	stats := chattools.NewChatStatsTool(core.Store)
	export := chattools.NewChatExportTool(core.Store, archivePath)
	imp := chattools.NewChatImportTool(core.Store, archivePath)

	return []server.ServerTool{
		{Tool: convID.Definition(), Handler: convID.Handle},
		{Tool: convCreate.Definition(), Handler: convCreate.Handle},
		{Tool: convArchive.Definition(), Handler: convArchive.Handle},
		{Tool: convDelete.Definition(), Handler: convDelete.Handle},
		{Tool: msgSend.Definition(), Handler: msgSend.Handle},
		{Tool: msgList.Definition(), Handler: msgList.Handle},
		{Tool: typing.Definition(), Handler: typing.Handle},
		{Tool: memAdd.Definition(), Handler: memAdd.Handle},
		{Tool: memProject.Definition(), Handler: memProject.Handle},
		{Tool: memShared.Definition(), Handler: memShared.Handle},
		{Tool: teamLead.Definition(), Handler: teamLead.Handle},
		{Tool: stats.Definition(), Handler: stats.Handle},
		{Tool: export.Definition(), Handler: export.Handle},
		{Tool: imp.Definition(), Handler: imp.Handle},
	}
}

// New creates and configures the MCP server with all tools, prompts and
// resources registered against core.
func New(core *Core) *server.MCPServer {
	s := server.NewMCPServer(
		"huddle",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	s.AddTools(Tools(core)...)

	agentContext := prompts.NewAgentContextPrompt(core.Aggregator)
	s.AddPrompt(agentContext.Definition(), agentContext.Handle)

	resourceHandler := resources.NewHandler(core.Store)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)
	s.AddResource(resourceHandler.ConversationsResource(), resourceHandler.HandleConversations)

	return s
}

func serverInstructions() string {
	return `You have access to Huddle, the shared conversation and memory core of a multi-agent team.

## CONVERSATIONS

Every conversation belongs to one scope of the project → team → agent tree and has a
canonical id: project-{project}, team-{project}-{team} or agent-{project}-{agent}.
Use conv_id to build ids instead of concatenating strings yourself. Project ids may
contain "-", so a parsed id can come back "ambiguous"; pass project_hint to resolve it.

## MESSAGES

Post with msg_send. System messages never carry an agent id, and the conversation
must exist (create it with conv_create first). Read history with msg_list: page 1 is
the most recent window, returned oldest first.

## SHARED MEMORY

Record durable facts with mem_add (decisions, key_points, context, summary) and an
importance from 1 to 10. Before acting as an agent, call mem_shared (or the
agent-context prompt) to load the project's key context and recent decisions.

## TEAMS

team_lead names the one agent who speaks for a team.`
}
