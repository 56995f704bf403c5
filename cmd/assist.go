package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"landing/internal/aiparse"
	"landing/internal/app"
	"landing/internal/assistant"
)

// AssistCommand creates the assist command
func AssistCommand() *cli.Command {
	return &cli.Command{
		Name:      "assist",
		Usage:     "Ask the page assistant for a change and apply it",
		ArgsUsage: "<request>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "page",
				Usage:    "Page ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "block",
				Usage: "Selected block the request refers to",
			},
			&cli.StringFlag{
				Name:  "response",
				Usage: "Apply this assistant response text instead of asking the model",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the proposed action without applying it",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app.App) error {
				return assist(ctx, a, c)
			})
		},
	}
}

func assist(ctx context.Context, a *app.App, c *cli.Command) error {
	pageID := c.String("page")
	var r aiparse.Result
	if raw := c.String("response"); raw != "" {
		r = aiparse.Parse(raw)
	} else {
		chat, err := a.Chat()
		if err != nil {
			return err
		}
		p, err := a.Pages().Get(ctx, pageID)
		if err != nil {
			return err
		}
		r, err = chat.Ask(ctx, p.Document, c.String("block"), strings.Join(c.Args().Slice(), " "))
		if err != nil {
			return err
		}
	}

	if r.Message != "" {
		fmt.Println(r.Message)
	}
	if !assistant.Mutating(r.Action) {
		return nil
	}
	fmt.Printf("Proposed: %s\n", assistant.Summary(r))
	if c.Bool("dry-run") {
		return nil
	}
	_, out, err := a.Pages().ApplyAssistant(ctx, pageID, r)
	if err != nil {
		return err
	}
	if !out.Applied {
		fmt.Printf("Not applied: %s\n", out.Reason)
		return nil
	}
	fmt.Printf("Applied, %d blocks touched\n", len(out.Changed))
	return nil
}
