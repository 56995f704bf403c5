package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"landing/cmd"
	"landing/internal/config"
)

func main() {
	app := &cli.Command{
		Name:  "landing",
		Usage: "Build, synthesize and edit landing pages, by hand or through AI agents",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.PagesCommand(),
			cmd.TemplatesCommand(),
			cmd.SynthCommand(),
			cmd.AssistCommand(),
			cmd.WatchCommand(),
			cmd.ApprovalsCommand(),
			cmd.MCPCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		log.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
