package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"landing/internal/analyzer"
	"landing/internal/app"
	"landing/internal/service"
)

func synthFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "title",
			Usage: "Title of the new page (derived from the analysis when empty)",
		},
		&cli.StringFlag{
			Name:  "hint",
			Usage: "Extra guidance for the analyzer",
		},
	}
}

// SynthCommand creates the synth command
func SynthCommand() *cli.Command {
	return &cli.Command{
		Name:  "synth",
		Usage: "Build a new page from a competitor URL, screenshots or a business brief",
		Commands: []*cli.Command{
			{
				Name:      "url",
				Usage:     "Analyze a competitor landing page",
				ArgsUsage: "<url>",
				Flags:     synthFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					url, err := requireArg(c, 0, "url")
					if err != nil {
						return err
					}
					return synthesize(ctx, c, func(s *service.SynthesisService) (*service.Synthesized, error) {
						return s.FromURL(ctx, c.String("title"), url, c.String("hint"))
					})
				},
			},
			{
				Name:      "screenshots",
				Usage:     "Analyze one or more screenshots and merge them",
				ArgsUsage: "<image> [image...]",
				Flags:     synthFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					shots, err := analyzer.LoadImages(c.Args().Slice())
					if err != nil {
						return err
					}
					return synthesize(ctx, c, func(s *service.SynthesisService) (*service.Synthesized, error) {
						return s.FromScreenshots(ctx, c.String("title"), shots, c.String("hint"))
					})
				},
			},
			{
				Name:  "describe",
				Usage: "Generate a page from a short business description",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "business", Usage: "Business type", Required: true},
					&cli.StringFlag{Name: "target", Usage: "Target audience", Required: true},
					&cli.StringFlag{Name: "goal", Usage: "Conversion goal"},
					&cli.StringFlag{Name: "style", Usage: "Visual style"},
					&cli.StringFlag{Name: "notes", Usage: "Anything else"},
					&cli.StringFlag{Name: "title", Usage: "Title of the new page (defaults to --business)"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					brief := analyzer.Brief{
						BusinessType: c.String("business"),
						Target:       c.String("target"),
						Goal:         c.String("goal"),
						Style:        c.String("style"),
						Notes:        c.String("notes"),
					}
					return synthesize(ctx, c, func(s *service.SynthesisService) (*service.Synthesized, error) {
						return s.FromDescription(ctx, c.String("title"), brief)
					})
				},
			},
		},
	}
}

func synthesize(ctx context.Context, c *cli.Command, run func(*service.SynthesisService) (*service.Synthesized, error)) error {
	return withApp(ctx, c, func(a *app.App) error {
		s, err := a.Synthesis()
		if err != nil {
			return err
		}
		res, err := run(s)
		if err != nil {
			return err
		}
		p := res.Page
		fmt.Printf("Created %s %q from %s\n", p.ID, p.Title, p.Document.Meta.AnalyzedFrom)
		for i, b := range p.Document.Blocks {
			title, _ := b.Settings["title"].(string)
			fmt.Printf("  %2d. %-14s %s\n", i+1, b.Type, title)
		}
		return nil
	})
}
