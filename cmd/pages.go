package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"landing/internal/app"
	"landing/internal/catalog"
	"landing/internal/domain"
)

// PagesCommand creates the pages command
func PagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "Create, inspect and manage landing pages",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List pages, most recently edited first",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(ctx, c, func(a *app.App) error {
						return listPages(ctx, a)
					})
				},
			},
			{
				Name:      "new",
				Usage:     "Create a draft page from a template",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "template",
						Usage: "Template id (see `landing templates`)",
						Value: "blank",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					title, err := requireArg(c, 0, "title")
					if err != nil {
						return err
					}
					return withApp(ctx, c, func(a *app.App) error {
						p, err := a.Pages().CreateFromTemplate(ctx, title, c.String("template"))
						if err != nil {
							return err
						}
						fmt.Printf("Created %s (%s, %d blocks)\n", p.ID, p.Slug, len(p.Document.Blocks))
						return nil
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Print a page with its document as JSON",
				ArgsUsage: "<page-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "page-id")
					if err != nil {
						return err
					}
					return withApp(ctx, c, func(a *app.App) error {
						p, err := a.Pages().Get(ctx, id)
						if err != nil {
							return err
						}
						return printJSON(p)
					})
				},
			},
			{
				Name:      "rename",
				Usage:     "Change a page title",
				ArgsUsage: "<page-id> <title>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "page-id")
					if err != nil {
						return err
					}
					title, err := requireArg(c, 1, "title")
					if err != nil {
						return err
					}
					return withApp(ctx, c, func(a *app.App) error {
						_, err := a.Pages().Rename(ctx, id, title)
						return err
					})
				},
			},
			statusCommand("publish", "Mark a page as published", domain.PageStatusPublished),
			statusCommand("unpublish", "Move a page back to draft", domain.PageStatusDraft),
			{
				Name:      "delete",
				Usage:     "Delete a page and its history",
				ArgsUsage: "<page-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "page-id")
					if err != nil {
						return err
					}
					return withApp(ctx, c, func(a *app.App) error {
						if err := a.Pages().Delete(ctx, id); err != nil {
							return err
						}
						fmt.Printf("Deleted %s\n", id)
						return nil
					})
				},
			},
			{
				Name:      "history",
				Usage:     "List the revisions of a page",
				ArgsUsage: "<page-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "page-id")
					if err != nil {
						return err
					}
					return withApp(ctx, c, func(a *app.App) error {
						return printHistory(ctx, a, id)
					})
				},
			},
			{
				Name:      "restore",
				Usage:     "Put a page back to one of its revisions",
				ArgsUsage: "<page-id> <revision-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "page-id")
					if err != nil {
						return err
					}
					rev, err := requireArg(c, 1, "revision-id")
					if err != nil {
						return err
					}
					return withApp(ctx, c, func(a *app.App) error {
						p, err := a.Pages().Restore(ctx, id, rev)
						if err != nil {
							return err
						}
						fmt.Printf("Restored %s to %s (%d blocks)\n", id, rev, len(p.Document.Blocks))
						return nil
					})
				},
			},
		},
	}
}

func statusCommand(name, usage string, status domain.PageStatus) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<page-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, 0, "page-id")
			if err != nil {
				return err
			}
			return withApp(ctx, c, func(a *app.App) error {
				_, err := a.Pages().SetStatus(ctx, id, status)
				return err
			})
		},
	}
}

func listPages(ctx context.Context, a *app.App) error {
	pages, err := a.Pages().List(ctx)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		fmt.Println("No pages yet. Create one with `landing pages new <title>`.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tBLOCKS\tUPDATED")
	for _, p := range pages {
		glyphs := ""
		for _, b := range p.Document.Blocks {
			glyphs += catalog.Glyph(b.Type)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d %s\t%s\n", p.ID, p.Title, p.Status, len(p.Document.Blocks), glyphs,
			p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func printHistory(ctx context.Context, a *app.App, pageID string) error {
	h, err := a.Pages().History(ctx, pageID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tREVISION\tBLOCKS\tCREATED\tLABEL")
	for _, r := range h.Revisions {
		marker := ""
		if r.ID == h.CurrentID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", marker, r.ID, len(r.Snapshot.Blocks),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Label)
	}
	return w.Flush()
}
