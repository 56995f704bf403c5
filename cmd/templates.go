package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"landing/internal/app"
	"landing/internal/catalog"
)

// TemplatesCommand creates the templates command
func TemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "List page templates and block types",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "blocks",
				Usage: "List block types instead of templates",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("blocks") {
				return listBlockTypes()
			}
			return withApp(ctx, c, func(a *app.App) error {
				return listTemplates(a.Catalog())
			})
		},
	}
}

func listTemplates(cat *catalog.Catalog) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBLOCKS\tDESCRIPTION")
	for _, t := range cat.List() {
		types := make([]string, len(t.BlockTypes))
		for i, bt := range t.BlockTypes {
			types[i] = string(bt)
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", t.ID, t.Preview, t.Name, strings.Join(types, ","), t.Description)
	}
	return w.Flush()
}

func listBlockTypes() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME")
	for _, t := range catalog.Types() {
		fmt.Fprintf(w, "%s\t%s %s\n", t, catalog.Glyph(t), catalog.Name(t))
	}
	return w.Flush()
}
