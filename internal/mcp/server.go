package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"landing/internal/assistant"
	"landing/internal/catalog"
	"landing/internal/service"
	"landing/internal/storage"
)

const (
	serverName    = "landing-mcp"
	serverVersion = "1.0.0"
)

// Server is the MCP server of the landing page builder. It exposes tools,
// resources and prompts so AI agents can build and edit pages.
type Server struct {
	mcp      *server.MCPServer
	approval *ApprovalQueue
	logger   *zap.Logger

	pages   *service.PageService
	synth   *service.SynthesisService // nil without an analyzer
	chat    *assistant.Chat           // nil without an analyzer
	catalog *catalog.Catalog

	mu           sync.Mutex
	activePageID string
}

// Deps holds the services the MCP server is built on.
type Deps struct {
	Pages     *service.PageService
	Synthesis *service.SynthesisService
	Chat      *assistant.Chat
	Catalog   *catalog.Catalog
	Emitter   EventEmitter
	Approvals storage.ApprovalStore // when set, approvals are decided out of process
	Logger    *zap.Logger
}

// New creates and configures the MCP server with all tools and resources.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		approval: NewApprovalQueue(deps.Emitter, deps.Approvals, logger),
		logger:   logger,
		pages:    deps.Pages,
		synth:    deps.Synthesis,
		chat:     deps.Chat,
		catalog:  deps.Catalog,
	}

	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerBlockTools()
	s.registerTemplateTools()
	s.registerHistoryTools()
	if s.synth != nil {
		s.registerSynthesisTools()
	}
	s.registerAssistantTools()
	s.registerPluginTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCP exposes the underlying server, e.g. for an SSE transport.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Approvals returns the approval queue for in-process decisions.
func (s *Server) Approvals() *ApprovalQueue { return s.approval }

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// resolvePageID returns the pageId argument or the active page.
func (s *Server) resolvePageID(req mcp.CallToolRequest) (string, error) {
	if pid := req.GetString("pageId", ""); pid != "" {
		return pid, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePageID != "" {
		return s.activePageID, nil
	}
	return "", fmt.Errorf("no pageId provided and no active page set (use set_active_page first)")
}

func (s *Server) setActivePage(id string) {
	s.mu.Lock()
	s.activePageID = id
	s.mu.Unlock()
}

// requireApproval asks for a human decision. A refusal is reported to the
// agent as a normal result, not an error.
func (s *Server) requireApproval(ctx context.Context, tool, description, metadata string) (*mcp.CallToolResult, bool) {
	if err := s.approval.Request(ctx, tool, description, metadata); err != nil {
		s.logger.Info("approval denied", zap.String("tool", tool), zap.Error(err))
		return textResult(fmt.Sprintf("Action not performed: %v", err)), false
	}
	return nil, true
}
