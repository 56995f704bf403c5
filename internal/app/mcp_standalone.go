package app

import (
	"context"

	"go.uber.org/zap"

	mcpserver "landing/internal/mcp"
)

// NewMCPServer builds the MCP server on the app's services. Approvals go
// through the database, so `landing approvals` can decide them from another
// terminal.
func (a *App) NewMCPServer() *mcpserver.Server {
	return mcpserver.New(mcpserver.Deps{
		Pages:     a.pages,
		Synthesis: a.synth,
		Chat:      a.chat,
		Catalog:   a.catalog,
		Emitter:   a.emitter,
		Approvals: a.stores.Approvals,
		Logger:    a.logger.Named("mcp"),
	})
}

// ServeMCP runs the app as an MCP server on stdin/stdout until the client
// disconnects. Template reloading and configured watches run alongside.
func (a *App) ServeMCP(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.WatchTemplates(ctx)
	if len(a.cfg.Watch) > 0 {
		if sched, err := a.Schedule(); err != nil {
			a.logger.Warn("watches configured but analyzer missing, not scheduled", zap.Error(err))
		} else if err := sched.Start(ctx, a.cfg.Watch); err != nil {
			a.logger.Warn("some watches were not scheduled", zap.Error(err))
		}
	}

	return a.NewMCPServer().ServeStdio()
}
