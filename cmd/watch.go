package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"landing/internal/app"
)

// WatchCommand creates the watch command
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Re-synthesize watched pages from competitor URLs on their cron schedules",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Run every watch once and exit",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app.App) error {
				return watch(ctx, a, c.Bool("now"))
			})
		},
	}
}

func watch(ctx context.Context, a *app.App, once bool) error {
	watches := a.Config().Watch
	if len(watches) == 0 {
		return fmt.Errorf("no [[watch]] entries in the configuration")
	}
	sched, err := a.Schedule()
	if err != nil {
		return err
	}

	if once {
		failed := 0
		for _, w := range watches {
			if sched.RunWatch(ctx, w) {
				fmt.Printf("ok      %s <- %s\n", w.PageID, w.URL)
			} else {
				failed++
				fmt.Printf("failed  %s <- %s\n", w.PageID, w.URL)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d watches failed", failed, len(watches))
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.WatchTemplates(ctx)
	if err := sched.Start(ctx, watches); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	fmt.Printf("Watching %d pages, press Ctrl+C to stop\n", len(watches))
	<-ctx.Done()

	sched.Stop()
	sched.WaitRunning(context.Background())
	return nil
}
