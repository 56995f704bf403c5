package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"landing/internal/app"
)

// MCPCommand creates the mcp command
func MCPCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the page builder to AI agents over MCP (stdio)",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app.App) error {
				return a.ServeMCP(ctx)
			})
		},
	}
}
