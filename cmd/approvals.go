package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"landing/internal/app"
	mcpserver "landing/internal/mcp"
	"landing/internal/storage"
)

// ApprovalsCommand creates the approvals command
func ApprovalsCommand() *cli.Command {
	return &cli.Command{
		Name:  "approvals",
		Usage: "Review destructive actions requested by a running MCP server",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List pending approvals",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(ctx, c, func(a *app.App) error {
						return listApprovals(ctx, a.Approvals())
					})
				},
			},
			decideCommand("approve", "Allow a pending action", true),
			decideCommand("reject", "Refuse a pending action", false),
			{
				Name:  "watch",
				Usage: "Print approval requests and page changes as they happen",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(ctx, c, func(a *app.App) error {
						ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
						defer stop()
						fmt.Println("Waiting for approval requests, press Ctrl+C to stop")
						a.Watch(ctx, printEmitter{})
						return nil
					})
				},
			},
		},
	}
}

func decideCommand(name, usage string, approved bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<approval-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, 0, "approval-id")
			if err != nil {
				return err
			}
			return withApp(ctx, c, func(a *app.App) error {
				if err := a.Approvals().ResolveApproval(ctx, id, approved); err != nil {
					return err
				}
				verb := "rejected"
				if approved {
					verb = "approved"
				}
				fmt.Printf("%s %s\n", id, verb)
				return nil
			})
		},
	}
}

func listApprovals(ctx context.Context, store storage.ApprovalStore) error {
	pending, err := store.ListPendingApprovals(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No pending approvals")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOOL\tREQUESTED\tDESCRIPTION")
	for _, ap := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ap.ID, ap.Tool, ap.CreatedAt.Local().Format("15:04:05"), ap.Description)
	}
	return w.Flush()
}

// printEmitter prints watcher events to stdout.
type printEmitter struct{}

func (printEmitter) Emit(_ context.Context, event string, data any) {
	switch event {
	case mcpserver.EventApprovalRequired:
		if ap, ok := data.(storage.Approval); ok {
			fmt.Printf("[approval] %s  %s: %s\n", ap.ID, ap.Tool, ap.Description)
			fmt.Printf("           landing approvals approve %s | reject %s\n", ap.ID, ap.ID)
		}
	case app.EventPagesChanged:
		fmt.Printf("[pages] %v pages, list changed\n", data)
	}
}
